package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apsscout/pagetree/internal/indexer"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}

		docIDs, err := store.ListDocIDs(ctx)
		if err != nil {
			return fmt.Errorf("listing documents: %w", err)
		}
		if len(docIDs) == 0 {
			fmt.Println("No documents ingested yet.")
			return nil
		}
		for _, id := range docIDs {
			index, err := store.LoadIndex(ctx, id)
			if err != nil {
				fmt.Printf("%s  (unreadable: %v)\n", id, err)
				continue
			}
			fmt.Printf("%s  %s  %d pages, %d nodes\n",
				index.DocID, index.DocName, index.TotalPages, index.NodeCount())
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document's index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		if err := store.Delete(ctx, args[0]); err != nil {
			return fmt.Errorf("deleting %s: %w", args[0], err)
		}
		fmt.Printf("Deleted index %s\n", args[0])
		return nil
	},
}

func openStore(ctx context.Context) (*indexer.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return indexer.NewStore(backend), nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}
