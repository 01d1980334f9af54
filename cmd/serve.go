package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentmodels/pagekit/internal/site"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the rendered site locally",
	Long: `Serves output_dir over HTTP, including /bibliography.bib so that
"pagekit render" can fetch it through base_url. With --watch, changes to
the chapter sources rebuild and re-render the site and reload open pages.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().Bool("open", false, "open browser automatically")
	serveCmd.Flags().Bool("watch", false, "rebuild on source changes and live-reload pages")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Serve.Port = port
	}
	open, _ := cmd.Flags().GetBool("open")
	watch, _ := cmd.Flags().GetBool("watch")

	opts := site.ServeOptions{
		Dir:      cfg.OutputDir,
		Port:     cfg.Serve.Port,
		AllowAll: cfg.Serve.AllowAll,
		Open:     open,
		Logger:   logger,
	}
	if watch {
		opts.Watch = []string{"."}
		opts.Ignore = []string{cfg.SiteDir, cfg.OutputDir}
		opts.Rebuild = func(ctx context.Context, changed []string) error {
			if _, err := buildSite(cfg); err != nil {
				return err
			}
			report, err := renderSite(ctx, cfg)
			if err != nil {
				return err
			}
			printReport(report)
			return report.Err()
		}
	}

	if err := site.Serve(cmd.Context(), opts); err != nil {
		return fmt.Errorf("serving site: %w", err)
	}
	return nil
}
