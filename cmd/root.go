package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pagetree",
	Short: "Tree-indexed retrieval over paginated documents",
	Long: `Pagetree builds a hierarchical section index over paginated documents
(such as Attending Physician Statements) and answers questions by letting
an LLM navigate the tree instead of a vector store. Indexes persist across
runs and retrieval results are cached by query and index fingerprint.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".pagetree.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
