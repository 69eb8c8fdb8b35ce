package cmd

import (
	"github.com/spf13/cobra"

	"github.com/apsscout/pagetree/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pagetree configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure pagetree and generates a .pagetree.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
