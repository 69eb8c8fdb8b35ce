package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/apsscout/pagetree/internal/indexer"
	"github.com/apsscout/pagetree/internal/llm"
	"github.com/apsscout/pagetree/internal/pages"
	"github.com/apsscout/pagetree/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Build and persist a tree index for a paginated document",
	Long: `Reads document pages from a JSON file or a directory of per-page text
files, builds the hierarchical section index, and persists it to the
configured store. Existing indexes are reused unless --force is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("doc-id", "", "document id (defaults to a content-derived id)")
	ingestCmd.Flags().String("doc-name", "", "human-readable document name")
	ingestCmd.Flags().String("glob", "", "glob for page files inside a directory (default **/*.txt)")
	ingestCmd.Flags().Bool("force", false, "rebuild even if an index already exists")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	docID, _ := cmd.Flags().GetString("doc-id")
	docName, _ := cmd.Flags().GetString("doc-name")
	glob, _ := cmd.Flags().GetString("glob")
	force, _ := cmd.Flags().GetBool("force")

	pageContents, err := pages.Load(args[0], pages.LoadOptions{Glob: glob})
	if err != nil {
		return err
	}
	if docID == "" {
		docID = pages.ContentHash(pageContents)
	}
	if docID == "" {
		docID = uuid.NewString()
	}
	if docName == "" {
		docName = args[0]
	}

	client, err := newLLMClient(cfg, logger)
	if err != nil {
		return err
	}
	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	store := indexer.NewStore(backend)

	pipeline, err := newPipeline(cfg, client, store, logger)
	if err != nil {
		return err
	}

	reporter := progress.NewReporter()
	reporter.Start(len(pageContents))
	pipeline.SetProgressFunc(func(done, total int, stage string) {
		reporter.Update(done, stage)
	})

	result, err := pipeline.Ingest(ctx, pageContents, docID, docName, force)
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", args[0], err)
	}

	if result.Skipped {
		fmt.Printf("Index for %s already exists (%d nodes). Use --force to rebuild.\n",
			result.Index.DocID, result.Index.NodeCount())
		return nil
	}

	fmt.Printf("Indexed %s: %d pages, %d nodes in %s\n",
		result.Index.DocID, result.Index.TotalPages, result.Index.NodeCount(),
		time.Since(start).Round(time.Millisecond))
	if result.InputTokens > 0 || result.OutputTokens > 0 {
		cost := llm.EstimateCost(cfg.Model, result.InputTokens, result.OutputTokens)
		fmt.Printf("LLM usage: %d in / %d out tokens (~$%.4f)\n",
			result.InputTokens, result.OutputTokens, cost)
	}
	if len(result.Errors) > 0 {
		fmt.Printf("Completed with %d non-fatal errors (see logs)\n", len(result.Errors))
	}
	return nil
}
