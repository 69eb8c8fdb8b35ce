// Package indexer builds hierarchical tree indexes over pre-OCR'd document
// pages: structure detection, boundary resolution, oversized-node
// subdivision, and summary enrichment.
package indexer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/apsscout/pagetree/internal/aps"
	"github.com/apsscout/pagetree/internal/llm"
	"github.com/apsscout/pagetree/internal/prompts"
	"github.com/apsscout/pagetree/internal/tokenizer"
	"github.com/apsscout/pagetree/internal/tree"
)

// Pipeline orchestrates the full ingestion workflow:
// detect structure -> build tree -> subdivide -> enrich -> persist.
type Pipeline struct {
	client     Completer
	counter    tokenizer.Counter
	builder    *tree.Builder
	splitter   *tree.Splitter
	detector   StructureDetector
	classifier *aps.Classifier
	registry   *prompts.Registry
	store      *Store
	logger     *zap.Logger
	opts       Options
	onProgress ProgressFunc
}

// NewPipeline creates a Pipeline. classifier may be nil to disable the
// heuristic pre-pass and section typing; logger may be nil.
func NewPipeline(
	client Completer,
	counter tokenizer.Counter,
	detector StructureDetector,
	classifier *aps.Classifier,
	registry *prompts.Registry,
	store *Store,
	logger *zap.Logger,
	opts Options,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	if opts.MaxRecursionDepth < 1 {
		opts.MaxRecursionDepth = 10
	}
	return &Pipeline{
		client:     client,
		counter:    counter,
		builder:    tree.NewBuilder(),
		splitter:   tree.NewSplitter(opts.MaxPagesPerNode, opts.MaxTokensPerNode),
		detector:   detector,
		classifier: classifier,
		registry:   registry,
		store:      store,
		logger:     logger,
		opts:       opts,
	}
}

// SetProgressFunc sets the progress callback.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.onProgress = fn
}

func (p *Pipeline) progress(done, total int, stage string) {
	if p.onProgress != nil {
		p.onProgress(done, total, stage)
	}
}

// Ingest builds and persists an index for the document. An existing index
// is loaded and returned unchanged unless force is set.
func (p *Pipeline) Ingest(ctx context.Context, pages []tree.PageContent, docID, docName string, force bool) (*BuildResult, error) {
	if !force && p.store != nil {
		exists, err := p.store.Exists(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("checking for existing index: %w", err)
		}
		if exists {
			p.logger.Info("index already exists, loading",
				zap.String("doc_id", docID))
			index, err := p.store.LoadIndex(ctx, docID)
			if err != nil {
				return nil, err
			}
			return &BuildResult{Index: index, Skipped: true}, nil
		}
	}

	result, err := p.BuildIndex(ctx, pages, docID, docName)
	if err != nil {
		return nil, err
	}
	if p.store != nil {
		if err := p.store.SaveIndex(ctx, result.Index); err != nil {
			return nil, fmt.Errorf("persisting index: %w", err)
		}
	}
	return result, nil
}

// BuildIndex runs the full pipeline over the pages without persisting.
func (p *Pipeline) BuildIndex(ctx context.Context, pages []tree.PageContent, docID, docName string) (*BuildResult, error) {
	start := time.Now()
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages provided")
	}

	result := &BuildResult{}

	// Populate missing token counts.
	for i := range pages {
		if pages[i].TokenCount == 0 && pages[i].Text != "" {
			pages[i].TokenCount = p.counter.Count(pages[i].Text)
		}
	}

	p.logger.Info("building index",
		zap.String("doc_id", docID),
		zap.String("doc_name", docName),
		zap.Int("pages", len(pages)))
	p.progress(0, 4, "detecting structure")

	entries, err := p.detectStructure(ctx, pages)
	if err != nil {
		p.deadLetter(ctx, docID, "detect_structure", err)
		return nil, err
	}

	entries = tree.AddPrefaceIfNeeded(entries)
	entries = tree.ValidateEntries(entries, len(pages))

	forest, err := p.builder.BuildTree(entries, len(pages))
	if err != nil {
		p.deadLetter(ctx, docID, "build_tree", err)
		return nil, fmt.Errorf("building tree: %w", err)
	}
	p.checkpoint(ctx, docID, "tree_built", map[string]int{"sections": len(entries)})
	p.progress(1, 4, "subdividing large nodes")

	tree.AddNodeTokenCounts(forest, pages)
	if err := p.subdivide(ctx, forest, pages); err != nil {
		// Subdivision failures leave the node whole rather than failing
		// the whole ingestion.
		p.logger.Warn("node subdivision incomplete", zap.Error(err))
		result.Errors = append(result.Errors, err)
	}

	tree.WriteNodeIDs(forest, 0)
	tree.AddNodeText(forest, pages)
	tree.AddNodeTokenCounts(forest, pages)
	p.progress(2, 4, "enriching nodes")

	if p.opts.EnableSummaries {
		p.generateSummaries(ctx, forest, result)
	}
	if p.opts.EnableClassification && p.classifier != nil {
		p.classifyNodes(ctx, forest, result)
	}

	docDescription := ""
	if p.opts.EnableDocDescription {
		docDescription, err = p.describeDocument(ctx, forest)
		if err != nil {
			result.Errors = append(result.Errors, err)
		}
	}
	p.progress(3, 4, "assembling index")

	result.Index = &tree.DocumentIndex{
		DocID:          docID,
		DocName:        docName,
		DocDescription: docDescription,
		TotalPages:     len(pages),
		Tree:           forest,
		CreatedAt:      time.Now().UTC(),
	}
	result.Duration = time.Since(start)
	p.progress(4, 4, "done")

	p.logger.Info("index built",
		zap.String("doc_id", docID),
		zap.Int("nodes", result.Index.NodeCount()),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// detectStructure tries the medical heuristic first and falls back to LLM
// structure detection when fewer than three sections are recognized.
func (p *Pipeline) detectStructure(ctx context.Context, pages []tree.PageContent) ([]tree.TOCEntry, error) {
	if p.classifier != nil {
		detected := p.classifier.DetectSections(pages)
		if len(detected) >= 3 {
			p.logger.Info("using heuristic sections", zap.Int("count", len(detected)))
			return heuristicTOC(detected), nil
		}
	}
	if p.detector == nil {
		return nil, fmt.Errorf("no structure detector available")
	}
	return p.detector.Detect(ctx, pages, 1)
}

// heuristicTOC converts detected section boundaries into flat TOC entries.
// Heuristic sections are all top level; headers were matched on their page,
// so appear_start is yes.
func heuristicTOC(sections []aps.DetectedSection) []tree.TOCEntry {
	entries := make([]tree.TOCEntry, 0, len(sections))
	for i, s := range sections {
		entries = append(entries, tree.TOCEntry{
			Structure:     strconv.Itoa(i + 1),
			Title:         s.Title,
			PhysicalIndex: s.PageNumber,
			AppearStart:   "yes",
		})
	}
	return entries
}

// subdivide replaces oversized leaf nodes with subtrees detected over just
// their page range. Rounds repeat because a subdivision can itself produce
// oversized leaves; the round count is capped to keep a pathological
// document from recursing forever.
func (p *Pipeline) subdivide(ctx context.Context, forest []*tree.Node, pages []tree.PageContent) error {
	if p.detector == nil {
		return nil
	}

	// Ranges that failed to subdivide are skipped in later rounds.
	unsplittable := make(map[[2]int]bool)

	for round := 0; round < p.opts.MaxRecursionDepth; round++ {
		tree.WriteNodeIDs(forest, 0)
		candidates := p.splitter.FindLargeNodes(forest)
		byID := tree.NodeMapping(forest)

		split := false
		for _, cand := range candidates {
			key := [2]int{cand.StartIndex, cand.EndIndex}
			if unsplittable[key] {
				continue
			}
			node := byID[cand.NodeID]
			if node == nil {
				continue
			}

			p.logger.Info("splitting large node",
				zap.String("title", node.Title),
				zap.Int("start", node.StartIndex),
				zap.Int("end", node.EndIndex),
				zap.Int("tokens", node.TokenCount))

			nodePages := pagesInRange(pages, node.StartIndex, node.EndIndex)
			entries, err := p.detector.Detect(ctx, nodePages, node.StartIndex)
			if err != nil {
				return fmt.Errorf("subdividing %q: %w", node.Title, err)
			}
			entries = tree.ValidateEntries(entries, node.EndIndex)

			var children []*tree.Node
			if len(entries) > 0 {
				children, err = p.builder.BuildTree(entries, node.EndIndex)
				if err != nil {
					children = nil
				}
			}
			if len(children) == 0 {
				unsplittable[key] = true
				continue
			}

			node.Children = children
			tree.AddNodeTokenCounts(node.Children, pages)
			split = true
		}

		if !split {
			break
		}
	}
	return nil
}

func pagesInRange(pages []tree.PageContent, start, end int) []tree.PageContent {
	var out []tree.PageContent
	for _, p := range pages {
		if p.PageNumber >= start && p.PageNumber <= end {
			out = append(out, p)
		}
	}
	return out
}

// generateSummaries fills node summaries concurrently under the semaphore.
// Short nodes reuse their leading text instead of spending an LLM call.
func (p *Pipeline) generateSummaries(ctx context.Context, forest []*tree.Node, result *BuildResult) {
	template, err := p.registry.Resolve(prompts.DomainAPS, prompts.CategoryIndexing, prompts.NameNodeSummary, prompts.ResolutionContext{})
	if err != nil {
		result.Errors = append(result.Errors, err)
		return
	}

	nodes := tree.Flatten(forest)
	sem := make(chan struct{}, p.opts.MaxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, node := range nodes {
		if node.Text == "" {
			continue
		}
		if p.counter.Count(node.Text) < 200 {
			node.Summary = truncate(node.Text, 500)
			continue
		}

		wg.Add(1)
		go func(n *tree.Node) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			prompt := prompts.Render(template, map[string]string{
				"title": n.Title,
				"text":  truncate(n.Text, 4000),
			})
			resp, err := p.client.Complete(ctx, llm.CompletionRequest{
				Model:     p.opts.Model,
				Messages:  []llm.Message{llm.TextMessage(llm.RoleUser, prompt)},
				MaxTokens: 300,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("summarizing %q: %w", n.Title, err))
				return
			}
			n.Summary = strings.TrimSpace(resp.Content)
			result.InputTokens += resp.InputTokens
			result.OutputTokens += resp.OutputTokens
		}(node)
	}
	wg.Wait()
}

func (p *Pipeline) classifyNodes(ctx context.Context, forest []*tree.Node, result *BuildResult) {
	for _, node := range tree.Flatten(forest) {
		st, err := p.classifier.Classify(ctx, node.Title, truncate(node.Text, 500))
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		node.ContentType = string(st)
	}
}

// describeDocument produces a one-sentence description from the top-level
// structure.
func (p *Pipeline) describeDocument(ctx context.Context, forest []*tree.Node) (string, error) {
	var sb strings.Builder
	for _, node := range forest {
		fmt.Fprintf(&sb, "- %s (pp. %d-%d)", node.Title, node.StartIndex, node.EndIndex)
		if node.Summary != "" {
			fmt.Fprintf(&sb, ": %s", truncate(node.Summary, 100))
		}
		sb.WriteString("\n")
	}

	prompt := fmt.Sprintf(`Generate a one-sentence description for this medical document (APS) given its section structure:

%s
Respond with the sentence only.`, sb.String())

	resp, err := p.client.Complete(ctx, llm.CompletionRequest{
		Model:     p.opts.Model,
		Messages:  []llm.Message{llm.TextMessage(llm.RoleUser, prompt)},
		MaxTokens: 150,
	})
	if err != nil {
		return "", fmt.Errorf("describing document: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

func (p *Pipeline) checkpoint(ctx context.Context, docID, stage string, payload any) {
	if p.store == nil {
		return
	}
	if err := p.store.Checkpoint(ctx, docID, stage, payload); err != nil {
		p.logger.Warn("checkpoint write failed",
			zap.String("stage", stage), zap.Error(err))
	}
}

func (p *Pipeline) deadLetter(ctx context.Context, docID, stage string, cause error) {
	if p.store == nil {
		return
	}
	if err := p.store.DeadLetter(ctx, docID, stage, cause); err != nil {
		p.logger.Warn("dead letter write failed",
			zap.String("stage", stage), zap.Error(err))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
