package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render math, citations and GitHub links into the built site",
	Long: `Walks the built site, typesets every math/tex script with KaTeX,
substitutes citation markers from the bibliography and fills in the
GitHub edit and view links. Pages are written to output_dir.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().Int("concurrency", 0, "max pages rendered in parallel (overrides config)")
	renderCmd.Flags().String("site", "", "built site directory (overrides config)")
	renderCmd.Flags().String("output", "", "output directory (overrides config)")
	renderCmd.Flags().Bool("fail-fast", false, "stop a page at its first formula error")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if concurrency, _ := cmd.Flags().GetInt("concurrency"); concurrency > 0 {
		cfg.MaxConcurrency = concurrency
	}
	if dir, _ := cmd.Flags().GetString("site"); dir != "" {
		cfg.SiteDir = dir
	}
	if dir, _ := cmd.Flags().GetString("output"); dir != "" {
		cfg.OutputDir = dir
	}
	if failFast, _ := cmd.Flags().GetBool("fail-fast"); failFast {
		cfg.Math.FailFast = true
	}

	report, err := renderSite(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	printReport(report)
	if len(report.Errors) > 0 {
		return fmt.Errorf("%d pages failed", len(report.Errors))
	}
	return nil
}
