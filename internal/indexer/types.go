package indexer

import (
	"context"
	"time"

	"github.com/apsscout/pagetree/internal/llm"
	"github.com/apsscout/pagetree/internal/tree"
)

// ProgressFunc is called as the pipeline advances through its stages.
type ProgressFunc func(done, total int, stage string)

// Completer is the LLM surface the pipeline needs.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// StructureDetector produces TOC entries for a page range. The pipeline
// uses it both for whole-document structure detection and to subdivide
// oversized nodes.
type StructureDetector interface {
	Detect(ctx context.Context, pages []tree.PageContent, startIndex int) ([]tree.TOCEntry, error)
}

// Options tunes the ingestion pipeline.
type Options struct {
	MaxPagesPerNode      int
	MaxTokensPerNode     int
	MaxGroupTokens       int
	MaxRecursionDepth    int
	MaxConcurrency       int
	Model                string
	EnableSummaries      bool
	EnableClassification bool
	EnableDocDescription bool
}

// DefaultOptions returns the standard pipeline settings.
func DefaultOptions() Options {
	return Options{
		MaxPagesPerNode:      10,
		MaxTokensPerNode:     20000,
		MaxGroupTokens:       20000,
		MaxRecursionDepth:    10,
		MaxConcurrency:       4,
		EnableSummaries:      true,
		EnableClassification: true,
	}
}

// BuildResult reports what an ingestion run produced.
type BuildResult struct {
	Index        *tree.DocumentIndex
	Skipped      bool
	Errors       []error
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}
