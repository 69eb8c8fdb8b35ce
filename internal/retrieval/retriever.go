// Package retrieval answers queries against a document index by letting the
// LLM reason over the tree structure, never over raw page text.
package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/apsscout/pagetree/internal/contextcache"
	"github.com/apsscout/pagetree/internal/jsonx"
	"github.com/apsscout/pagetree/internal/llm"
	"github.com/apsscout/pagetree/internal/prefix"
	"github.com/apsscout/pagetree/internal/promptcache"
	"github.com/apsscout/pagetree/internal/prompts"
	"github.com/apsscout/pagetree/internal/tree"
)

// ErrCircuitOpen is returned when the retrieval circuit breaker is
// shedding load.
var ErrCircuitOpen = errors.New("retrieval: circuit open")

// NodeSummary is the caller-facing view of a retrieved node.
type NodeSummary struct {
	NodeID      string `json:"node_id"`
	Title       string `json:"title"`
	StartIndex  int    `json:"start_index"`
	EndIndex    int    `json:"end_index"`
	Summary     string `json:"summary,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// Result is one retrieval outcome.
type Result struct {
	Query       string        `json:"query"`
	Nodes       []NodeSummary `json:"retrieved_nodes"`
	SourcePages []int         `json:"source_pages"`
	Reasoning   string        `json:"reasoning"`
	FromCache   bool          `json:"from_cache,omitempty"`
}

// Completer is the LLM surface the retriever needs.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// Breaker is the circuit-breaker surface used around LLM calls.
type Breaker interface {
	Allow() bool
	RecordSuccess()
	RecordFailure()
}

// Options configures a Retriever.
type Options struct {
	Model string
	// TopK is the default number of nodes requested per query.
	TopK int
	// MaxConcurrent bounds in-flight category searches in BatchRetrieve.
	MaxConcurrent int
	// CacheTTLSeconds bounds cached results; 0 means no expiry.
	CacheTTLSeconds int
}

// Retriever runs tree-search queries with prompt-cache-friendly message
// construction and result caching.
type Retriever struct {
	client   Completer
	registry *prompts.Registry
	builder  *promptcache.Builder
	cache    contextcache.Cache
	breaker  Breaker
	logger   *zap.Logger
	opts     Options
}

// NewRetriever creates a Retriever. cache and breaker may be nil to
// disable result caching and load shedding; logger may be nil.
func NewRetriever(client Completer, registry *prompts.Registry, cache contextcache.Cache, brk Breaker, logger *zap.Logger, opts Options) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TopK < 1 {
		opts.TopK = 5
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 4
	}
	return &Retriever{
		client:   client,
		registry: registry,
		builder:  promptcache.NewBuilder(),
		cache:    cache,
		breaker:  brk,
		logger:   logger,
		opts:     opts,
	}
}

// Retrieve finds up to topK nodes relevant to the query. Identical queries
// against an unchanged index are served from the result cache.
func (r *Retriever) Retrieve(ctx context.Context, index *tree.DocumentIndex, query string, topK int) (*Result, error) {
	if topK < 1 {
		topK = r.opts.TopK
	}

	cacheKey := contextcache.ComputeCacheKey(query, contextcache.ComputeIndexHash(index), r.opts.Model, "")
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, cacheKey); err == nil {
			var cached Result
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.FromCache = true
				return &cached, nil
			}
		}
	}

	treeJSON, err := SerializeTree(index)
	if err != nil {
		return nil, fmt.Errorf("serializing tree: %w", err)
	}

	queryTemplate, err := r.registry.Resolve(prompts.DomainAPS, prompts.CategoryRetrieval, prompts.NameRetrieveQuery, prompts.ResolutionContext{})
	if err != nil {
		return nil, err
	}
	userPrompt := prompts.Render(queryTemplate, map[string]string{
		"query": query,
		"top_k": strconv.Itoa(topK),
	})

	result, err := r.search(ctx, treeJSON, userPrompt, query, index, topK)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := r.cache.Put(ctx, cacheKey, data, r.opts.CacheTTLSeconds); err != nil {
				r.logger.Warn("result cache write failed", zap.Error(err))
			}
		}
	}
	return result, nil
}

// search issues one tree-search call. The system instructions and the
// serialized tree are placed in cached blocks so repeated queries against
// the same index reuse the provider's prompt cache.
func (r *Retriever) search(ctx context.Context, treeJSON, userPrompt, query string, index *tree.DocumentIndex, topK int) (*Result, error) {
	if r.breaker != nil && !r.breaker.Allow() {
		return nil, ErrCircuitOpen
	}

	systemTemplate, err := r.registry.Resolve(prompts.DomainAPS, prompts.CategoryRetrieval, prompts.NameRetrieveSystem, prompts.ResolutionContext{})
	if err != nil {
		return nil, err
	}

	messages := r.builder.BuildMessages(systemTemplate, "Document index:\n"+treeJSON, userPrompt)
	resp, err := r.client.Complete(ctx, llm.CompletionRequest{
		Model:     r.opts.Model,
		Messages:  messages,
		MaxTokens: 1000,
	})
	if err != nil {
		if r.breaker != nil {
			r.breaker.RecordFailure()
		}
		return nil, fmt.Errorf("tree search: %w", err)
	}
	if r.breaker != nil {
		r.breaker.RecordSuccess()
	}

	nodeIDs, reasoning := ParseNodeSelection(resp.Content)
	return resolveNodes(index, query, nodeIDs, reasoning, topK), nil
}

// resolveNodes maps returned node ids back to tree nodes. Unknown ids are
// dropped; the LLM occasionally invents them.
func resolveNodes(index *tree.DocumentIndex, query string, nodeIDs []string, reasoning string, topK int) *Result {
	nodeMap := tree.NodeMapping(index.Tree)
	result := &Result{Query: query, Reasoning: reasoning, SourcePages: []int{}}

	var matched []*tree.Node
	for _, id := range nodeIDs {
		if len(matched) >= topK {
			break
		}
		node, ok := nodeMap[id]
		if !ok {
			continue
		}
		matched = append(matched, node)
		result.Nodes = append(result.Nodes, NodeSummary{
			NodeID:      node.NodeID,
			Title:       node.Title,
			StartIndex:  node.StartIndex,
			EndIndex:    node.EndIndex,
			Summary:     node.Summary,
			ContentType: node.ContentType,
		})
	}
	if len(matched) > 0 {
		result.SourcePages = tree.SourcePages(matched)
	}
	return result
}

// ParseNodeSelection decodes the model's node selection. Accepted shapes:
// {"node_list": [...]}, {"node_ids": [...]}, or a bare list of ids.
// Elements may be strings or {"node_id": "..."} objects.
func ParseNodeSelection(raw string) ([]string, string) {
	var obj struct {
		NodeList  []json.RawMessage `json:"node_list"`
		NodeIDs   []json.RawMessage `json:"node_ids"`
		Reasoning string            `json:"reasoning"`
	}
	if err := jsonx.Extract(raw, &obj); err == nil {
		items := obj.NodeList
		if len(items) == 0 {
			items = obj.NodeIDs
		}
		if len(items) > 0 || obj.Reasoning != "" {
			return coerceIDs(items), obj.Reasoning
		}
	}

	var bare []json.RawMessage
	if err := jsonx.Extract(raw, &bare); err == nil {
		return coerceIDs(bare), ""
	}
	return nil, ""
}

func coerceIDs(items []json.RawMessage) []string {
	var ids []string
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			ids = append(ids, s)
			continue
		}
		var obj struct {
			NodeID string `json:"node_id"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && obj.NodeID != "" {
			ids = append(ids, obj.NodeID)
		}
	}
	return ids
}

// SerializeTree renders the index structure (titles, ranges, summaries,
// never page text) as canonical JSON. Node order and key order are
// deterministic so identical indexes always produce identical bytes,
// keeping provider prompt caches warm.
func SerializeTree(index *tree.DocumentIndex) (string, error) {
	refs := make([]prefix.NodeRef, 0, index.NodeCount())
	for _, node := range tree.Flatten(index.Tree) {
		refs = append(refs, prefix.NodeRef{
			DocID:      index.DocID,
			NodeID:     node.NodeID,
			Title:      node.Title,
			StartIndex: node.StartIndex,
			EndIndex:   node.EndIndex,
			Summary:    node.Summary,
		})
	}

	stable, err := prefix.Stabilize(refs, prefix.ByPageNumber)
	if err != nil {
		return "", err
	}
	return prefix.StabilizeJSON(stable)
}

// joinQuestions renders a numbered question list for category prompts.
func joinQuestions(questions []Question) string {
	var sb strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q.Text)
	}
	return sb.String()
}
