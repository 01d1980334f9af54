package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentmodels/pagekit/internal/codebox"
	"github.com/agentmodels/pagekit/internal/page"
	"github.com/agentmodels/pagekit/internal/walker"
)

var codeboxesCmd = &cobra.Command{
	Use:   "codeboxes",
	Short: "Extract the WebPPL code boxes of every chapter into .wppl scripts",
	Long: `Reads the chapter pages of the built site and writes each code box to
<dir>/<chapter>/<chapter>_<n>_<label>.wppl, where label is the first word
of the box's leading comment. Each chapter directory is rewritten from
scratch, so scripts of renamed boxes do not linger.`,
	RunE: runCodeboxes,
}

func init() {
	codeboxesCmd.Flags().String("dir", "_codeboxes", "directory to write scripts to")
	rootCmd.AddCommand(codeboxesCmd)
}

func runCodeboxes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, _ := cmd.Flags().GetString("dir")

	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: cfg.SiteDir,
		Include: []string{cfg.ChaptersDir + "/**"},
		Kinds:   []walker.Kind{walker.KindPage},
	})
	if err != nil {
		return fmt.Errorf("listing chapters: %w", err)
	}

	total := 0
	for _, f := range files {
		pg, err := page.LoadFile(cfg.SiteDir, f.RelPath)
		if err != nil {
			return err
		}
		chapter := codebox.ChapterName(f.RelPath)
		paths, err := codebox.Write(dir, chapter, codebox.Extract(pg.Doc))
		if err != nil {
			return err
		}
		logger.Debugw("code boxes written", "chapter", chapter, "count", len(paths))
		total += len(paths)
	}

	fmt.Printf("Wrote %d scripts from %d chapters to %s\n", total, len(files), dir)
	return nil
}
