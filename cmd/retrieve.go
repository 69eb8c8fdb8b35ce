package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apsscout/pagetree/internal/indexer"
)

var retrieveCmd = &cobra.Command{
	Use:     "retrieve [question]",
	Aliases: []string{"ask"},
	Short:   "Find the document sections relevant to a question",
	Long: `Runs a tree search over a previously ingested document and prints the
matching sections with their page ranges.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().String("doc-id", "", "document id (required)")
	retrieveCmd.Flags().Int("top-k", 0, "maximum number of sections (overrides config)")
	retrieveCmd.Flags().Bool("json", false, "output the full result as JSON")
	retrieveCmd.MarkFlagRequired("doc-id")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := args[0]

	docID, _ := cmd.Flags().GetString("doc-id")
	topK, _ := cmd.Flags().GetInt("top-k")
	jsonOutput, _ := cmd.Flags().GetBool("json")

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

	result, err := retriever.Retrieve(ctx, index, query, topK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if len(result.Nodes) == 0 {
		fmt.Println("No relevant sections found.")
		return nil
	}
	for _, n := range result.Nodes {
		fmt.Printf("%s  %s (pages %d-%d)\n", n.NodeID, n.Title, n.StartIndex, n.EndIndex)
		if n.Summary != "" {
			fmt.Printf("      %s\n", n.Summary)
		}
	}
	fmt.Printf("Source pages: %v\n", result.SourcePages)
	if result.Reasoning != "" {
		fmt.Printf("Reasoning: %s\n", result.Reasoning)
	}
	if result.FromCache {
		fmt.Println("(served from cache)")
	}
	return nil
}
