package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/apsscout/pagetree/internal/aps"
	"github.com/apsscout/pagetree/internal/indexer"
	"github.com/apsscout/pagetree/internal/retrieval"
)

var batchCmd = &cobra.Command{
	Use:   "batch [questions.json]",
	Short: "Run batched retrieval for a categorized question set",
	Long: `Reads a JSON array of questions ({"id", "text", "category"}), groups them
by category, and runs one tree search per category instead of one per
question.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("doc-id", "", "document id (required)")
	batchCmd.Flags().Bool("json", false, "output results as JSON")
	batchCmd.MarkFlagRequired("doc-id")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	docID, _ := cmd.Flags().GetString("doc-id")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading questions: %w", err)
	}
	var questions []retrieval.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return fmt.Errorf("parsing questions: %w", err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("no questions in %s", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	store := indexer.NewStore(backend)

	index, err := store.LoadIndex(ctx, docID)
	if err != nil {
		return fmt.Errorf("loading index %s: %w\nRun `pagetree ingest` first", docID, err)
	}

	client, err := newLLMClient(cfg, logger)
	if err != nil {
		return err
	}
	retriever := newRetriever(cfg, client, newCache(cfg, backend), logger)

	results, err := retriever.BatchRetrieve(ctx, index, questions)
	if err != nil {
		return fmt.Errorf("batch retrieval failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	categories := make([]string, 0, len(results))
	for c := range results {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)

	for _, c := range categories {
		result := results[aps.Category(c)]
		fmt.Printf("[%s]\n", c)
		for _, n := range result.Nodes {
			fmt.Printf("  %s  %s (pages %d-%d)\n", n.NodeID, n.Title, n.StartIndex, n.EndIndex)
		}
		fmt.Printf("  source pages: %v\n", result.SourcePages)
	}
	return nil
}
