package indexer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apsscout/pagetree/internal/llm"
	"github.com/apsscout/pagetree/internal/persistence"
	"github.com/apsscout/pagetree/internal/prompts"
	"github.com/apsscout/pagetree/internal/tokenizer"
	"github.com/apsscout/pagetree/internal/tree"
)

// fakeDetector returns canned TOC entries per start index.
type fakeDetector struct {
	byStart map[int][]tree.TOCEntry
	calls   []int
}

func (d *fakeDetector) Detect(ctx context.Context, pages []tree.PageContent, startIndex int) ([]tree.TOCEntry, error) {
	d.calls = append(d.calls, startIndex)
	return d.byStart[startIndex], nil
}

// fakeCompleter returns a fixed response and counts calls.
type fakeCompleter struct {
	content string
	calls   int
}

func (c *fakeCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.calls++
	return &llm.CompletionResponse{Content: c.content, InputTokens: 10, OutputTokens: 5}, nil
}

func makePages(n, tokensEach int) []tree.PageContent {
	pages := make([]tree.PageContent, n)
	for i := range pages {
		pages[i] = tree.PageContent{
			PageNumber: i + 1,
			Text:       fmt.Sprintf("page %d narrative text. %s", i+1, strings.Repeat("x ", tokensEach)),
			TokenCount: tokensEach,
		}
	}
	return pages
}

func testPipeline(detector StructureDetector, store *Store, opts Options) *Pipeline {
	return NewPipeline(
		&fakeCompleter{content: "a generated summary"},
		tokenizer.Approximate{},
		detector,
		nil,
		prompts.DefaultRegistry(),
		store,
		nil,
		opts,
	)
}

func TestBuildIndexBasic(t *testing.T) {
	detector := &fakeDetector{byStart: map[int][]tree.TOCEntry{
		1: {
			{Structure: "1", Title: "Face Sheet", PhysicalIndex: 1, AppearStart: "yes"},
			{Structure: "2", Title: "Progress Notes", PhysicalIndex: 3, AppearStart: "yes"},
		},
	}}
	opts := DefaultOptions()
	opts.EnableSummaries = false
	p := testPipeline(detector, nil, opts)

	result, err := p.BuildIndex(context.Background(), makePages(6, 100), "doc1", "APS Smith")
	require.NoError(t, err)

	idx := result.Index
	assert.Equal(t, "doc1", idx.DocID)
	assert.Equal(t, 6, idx.TotalPages)
	require.Len(t, idx.Tree, 2)
	assert.Equal(t, "0000", idx.Tree[0].NodeID)
	assert.Equal(t, 1, idx.Tree[0].StartIndex)
	assert.Equal(t, 2, idx.Tree[0].EndIndex)
	assert.Equal(t, 3, idx.Tree[1].StartIndex)
	assert.Equal(t, 6, idx.Tree[1].EndIndex)
	assert.NotEmpty(t, idx.Tree[0].Text)
	assert.NotZero(t, idx.Tree[0].TokenCount)
}

func TestBuildIndexEmptyPages(t *testing.T) {
	p := testPipeline(&fakeDetector{}, nil, DefaultOptions())
	_, err := p.BuildIndex(context.Background(), nil, "doc1", "empty")
	assert.Error(t, err)
}

func TestBuildIndexSubdividesLargeNodes(t *testing.T) {
	// One 20-page section dense enough to qualify for splitting.
	detector := &fakeDetector{byStart: map[int][]tree.TOCEntry{
		1: {
			{Structure: "1", Title: "Records", PhysicalIndex: 1, AppearStart: "yes"},
		},
		// Subdivision call starts at the node's first page.
		// Entries keep document-level physical numbering.
	}}
	detector.byStart[1] = []tree.TOCEntry{
		{Structure: "1", Title: "Records", PhysicalIndex: 1, AppearStart: "yes"},
	}
	// After the whole-document pass, the splitter finds "Records" (pages
	// 1-20) oversized and re-detects starting at page 1. Distinguish the
	// two calls by call order.
	sub := []tree.TOCEntry{
		{Structure: "1", Title: "Part A", PhysicalIndex: 1, AppearStart: "yes"},
		{Structure: "2", Title: "Part B", PhysicalIndex: 11, AppearStart: "yes"},
	}
	firstCall := true
	seqDetector := detectorFunc(func(ctx context.Context, pages []tree.PageContent, startIndex int) ([]tree.TOCEntry, error) {
		if firstCall {
			firstCall = false
			return detector.byStart[1], nil
		}
		return sub, nil
	})

	opts := DefaultOptions()
	opts.EnableSummaries = false
	opts.MaxPagesPerNode = 10
	opts.MaxTokensPerNode = 1000
	p := testPipeline(seqDetector, nil, opts)

	result, err := p.BuildIndex(context.Background(), makePages(20, 200), "doc1", "big")
	require.NoError(t, err)

	require.Len(t, result.Index.Tree, 1)
	root := result.Index.Tree[0]
	require.Len(t, root.Children, 2)
	assert.Equal(t, 1, root.Children[0].StartIndex)
	assert.Equal(t, 10, root.Children[0].EndIndex)
	assert.Equal(t, 11, root.Children[1].StartIndex)
	assert.Equal(t, 20, root.Children[1].EndIndex)

	// IDs are depth-first after subdivision.
	assert.Equal(t, "0000", root.NodeID)
	assert.Equal(t, "0001", root.Children[0].NodeID)
	assert.Equal(t, "0002", root.Children[1].NodeID)
}

type detectorFunc func(ctx context.Context, pages []tree.PageContent, startIndex int) ([]tree.TOCEntry, error)

func (f detectorFunc) Detect(ctx context.Context, pages []tree.PageContent, startIndex int) ([]tree.TOCEntry, error) {
	return f(ctx, pages, startIndex)
}

func TestBuildIndexSummaries(t *testing.T) {
	detector := &fakeDetector{byStart: map[int][]tree.TOCEntry{
		1: {
			{Structure: "1", Title: "Short", PhysicalIndex: 1, AppearStart: "yes"},
			{Structure: "2", Title: "Long", PhysicalIndex: 2, AppearStart: "yes"},
		},
	}}

	// Page 1 short (reuses leading text), page 2 onward long (LLM call).
	pages := []tree.PageContent{
		{PageNumber: 1, Text: "brief note", TokenCount: 3},
		{PageNumber: 2, Text: strings.Repeat("long clinical narrative ", 100), TokenCount: 600},
		{PageNumber: 3, Text: strings.Repeat("more narrative ", 100), TokenCount: 400},
	}

	client := &fakeCompleter{content: "LLM summary of the section"}
	opts := DefaultOptions()
	p := NewPipeline(client, tokenizer.Approximate{}, detector, nil, prompts.DefaultRegistry(), nil, nil, opts)

	result, err := p.BuildIndex(context.Background(), pages, "doc1", "aps")
	require.NoError(t, err)

	short := result.Index.Tree[0]
	long := result.Index.Tree[1]
	assert.Equal(t, "brief note", short.Summary)
	assert.Equal(t, "LLM summary of the section", long.Summary)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 10, result.InputTokens)
}

func TestIngestSkipsExistingIndex(t *testing.T) {
	backend := persistence.NewMemoryBackend()
	store := NewStore(backend)
	ctx := context.Background()

	existing := &tree.DocumentIndex{DocID: "doc1", DocName: "original", TotalPages: 2,
		Tree: []*tree.Node{{NodeID: "0000", Title: "A", StartIndex: 1, EndIndex: 2}}}
	require.NoError(t, store.SaveIndex(ctx, existing))

	detector := &fakeDetector{byStart: map[int][]tree.TOCEntry{
		1: {{Structure: "1", Title: "New", PhysicalIndex: 1, AppearStart: "yes"}},
	}}
	opts := DefaultOptions()
	opts.EnableSummaries = false
	p := testPipeline(detector, store, opts)

	result, err := p.Ingest(ctx, makePages(2, 10), "doc1", "replacement", false)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, "original", result.Index.DocName)
	assert.Empty(t, detector.calls)

	// force rebuilds and replaces.
	result, err = p.Ingest(ctx, makePages(2, 10), "doc1", "replacement", true)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, "replacement", result.Index.DocName)

	loaded, err := store.LoadIndex(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, "replacement", loaded.DocName)
}

func TestStoreRoundTripAndList(t *testing.T) {
	store := NewStore(persistence.NewMemoryBackend())
	ctx := context.Background()

	_, err := store.LoadIndex(ctx, "missing")
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	idx := &tree.DocumentIndex{DocID: "doc1", DocName: "n", TotalPages: 3,
		Tree: []*tree.Node{{NodeID: "0000", Title: "A", StartIndex: 1, EndIndex: 3, Summary: "s"}}}
	require.NoError(t, store.SaveIndex(ctx, idx))

	got, err := store.LoadIndex(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, idx.DocName, got.DocName)
	require.Len(t, got.Tree, 1)
	assert.Equal(t, "s", got.Tree[0].Summary)

	ids, err := store.ListDocIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1"}, ids)
}

func TestStoreCheckpointAndDeadLetter(t *testing.T) {
	backend := persistence.NewMemoryBackend()
	store := NewStore(backend)
	ctx := context.Background()

	require.NoError(t, store.Checkpoint(ctx, "doc1", "tree_built", map[string]int{"sections": 4}))
	require.NoError(t, store.DeadLetter(ctx, "doc1", "detect_structure", fmt.Errorf("model unavailable")))

	keys, err := backend.ListKeys(ctx, "checkpoint_doc1_")
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	keys, err = backend.ListKeys(ctx, "deadletter_doc1_")
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestParseTOCEntries(t *testing.T) {
	raw := "```json\n" + `[
		{"structure": "1", "title": "A", "physical_index": 3, "appear_start": "yes"},
		{"structure": "1.1", "title": "B", "physical_index": "<physical_index_5>", "appear_start": "no"},
		{"structure": "2", "title": "C", "physical_index": null}
	]` + "\n```"

	entries, err := ParseTOCEntries(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].PhysicalIndex)
	assert.Equal(t, "yes", entries[0].AppearStart)
	assert.Equal(t, 5, entries[1].PhysicalIndex)
	assert.Equal(t, "no", entries[1].AppearStart)
}

func TestParseTOCEntriesWrappedObject(t *testing.T) {
	raw := `{"table_of_contents": [{"structure": "1", "title": "A", "physical_index": 1, "appear_start": "yes"}]}`
	entries, err := ParseTOCEntries(raw)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].Title)
}
