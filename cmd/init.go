package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentmodels/pagekit/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pagekit configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure pagekit for your site and generates a .pagekit.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
