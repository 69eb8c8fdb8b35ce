package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/apsscout/pagetree/internal/jsonx"
	"github.com/apsscout/pagetree/internal/llm"
	"github.com/apsscout/pagetree/internal/prompts"
	"github.com/apsscout/pagetree/internal/tree"
)

// LLMDetector infers document structure by showing the model token-bounded
// page groups and accumulating the TOC entries it returns.
type LLMDetector struct {
	client   Completer
	builder  *tree.Builder
	registry *prompts.Registry
	model    string
	// MaxGroupTokens bounds the page text shown per call.
	MaxGroupTokens int
}

func NewLLMDetector(client Completer, registry *prompts.Registry, model string, maxGroupTokens int) *LLMDetector {
	if maxGroupTokens < 1 {
		maxGroupTokens = 20000
	}
	return &LLMDetector{
		client:         client,
		builder:        tree.NewBuilder(),
		registry:       registry,
		model:          model,
		MaxGroupTokens: maxGroupTokens,
	}
}

// Detect asks the model for the section structure of the given pages.
// startIndex is the physical page number of the first page, so subdivision
// calls keep document-level numbering. Pages are grouped under the token
// budget and each group is scanned separately; groups after the first use
// the subdivision prompt since they continue an already-started section.
func (d *LLMDetector) Detect(ctx context.Context, pages []tree.PageContent, startIndex int) ([]tree.TOCEntry, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	texts := make([]string, len(pages))
	lengths := make([]int, len(pages))
	for i, p := range pages {
		texts[i] = tree.PageText([]tree.PageContent{p}, p.PageNumber, p.PageNumber, true)
		lengths[i] = p.TokenCount
	}

	groups, err := d.builder.GroupPages(texts, lengths, d.MaxGroupTokens, 0)
	if err != nil {
		return nil, fmt.Errorf("grouping pages: %w", err)
	}

	name := prompts.NameTOCDetection
	if startIndex > 1 {
		name = prompts.NameStructureScan
	}
	template, err := d.registry.Resolve(prompts.DomainAPS, prompts.CategoryIndexing, name, prompts.ResolutionContext{})
	if err != nil {
		return nil, err
	}

	var entries []tree.TOCEntry
	for _, group := range groups {
		resp, err := d.client.Complete(ctx, llm.CompletionRequest{
			Model: d.model,
			Messages: []llm.Message{
				llm.TextMessage(llm.RoleSystem, template),
				llm.TextMessage(llm.RoleUser, group),
			},
			MaxTokens: 4000,
		})
		if err != nil {
			return nil, fmt.Errorf("detecting structure: %w", err)
		}
		parsed, err := ParseTOCEntries(resp.Content)
		if err != nil {
			return nil, fmt.Errorf("parsing structure response: %w", err)
		}
		entries = append(entries, parsed...)
	}
	return entries, nil
}

var physicalIndexTag = regexp.MustCompile(`physical_index_(\d+)`)

// ParseTOCEntries decodes model output into TOC entries. The model
// sometimes returns physical_index as a tag string ("<physical_index_12>")
// instead of a number; both forms are accepted. Entries whose index cannot
// be parsed are dropped.
func ParseTOCEntries(raw string) ([]tree.TOCEntry, error) {
	var items []struct {
		Structure     string          `json:"structure"`
		Title         string          `json:"title"`
		PhysicalIndex json.RawMessage `json:"physical_index"`
		AppearStart   string          `json:"appear_start"`
	}
	if err := jsonx.Extract(raw, &items); err != nil {
		// Some responses wrap the list in an object.
		var wrapped struct {
			TableOfContents json.RawMessage `json:"table_of_contents"`
		}
		if err2 := jsonx.Extract(raw, &wrapped); err2 != nil || wrapped.TableOfContents == nil {
			return nil, err
		}
		if err2 := json.Unmarshal(wrapped.TableOfContents, &items); err2 != nil {
			return nil, err
		}
	}

	entries := make([]tree.TOCEntry, 0, len(items))
	for _, it := range items {
		pi, ok := parsePhysicalIndex(it.PhysicalIndex)
		if !ok {
			continue
		}
		appear := it.AppearStart
		if appear != "yes" {
			appear = "no"
		}
		entries = append(entries, tree.TOCEntry{
			Structure:     it.Structure,
			Title:         it.Title,
			PhysicalIndex: pi,
			AppearStart:   appear,
		})
	}
	return entries, nil
}

func parsePhysicalIndex(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, n >= 1
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if m := physicalIndexTag.FindStringSubmatch(s); m != nil {
			n, err := strconv.Atoi(m[1])
			return n, err == nil && n >= 1
		}
		n, err := strconv.Atoi(s)
		return n, err == nil && n >= 1
	}
	return 0, false
}
