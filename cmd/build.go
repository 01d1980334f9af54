package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the site from the markdown chapters, then render it",
	Long: `Converts chapters/*.md into HTML pages in site_dir (front matter,
highlighted code, $$..$$ math), writes an index page and copies static
files, then runs the same rendering pass as "pagekit render".`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Bool("no-render", false, "only convert the chapters")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := buildSite(cfg)
	if err != nil {
		return fmt.Errorf("building site: %w", err)
	}
	fmt.Printf("Built %d chapters into %s\n", len(res.Chapters), cfg.SiteDir)

	if noRender, _ := cmd.Flags().GetBool("no-render"); noRender {
		return nil
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
