package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentmodels/pagekit/internal/links"
	"github.com/agentmodels/pagekit/internal/page"
)

var linksCmd = &cobra.Command{
	Use:   "links <page>...",
	Short: "Print the GitHub edit and view URLs of pages",
	Long: `Prints, for each site page path (e.g. /chapters/1-introduction.html or
chapters/1-introduction.html), its markdown path and the GitHub edit and
view URLs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLinks,
}

func init() {
	linksCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(linksCmd)
}

type pageLinks struct {
	Page     string `json:"page"`
	Markdown string `json:"markdown"`
	Edit     string `json:"edit"`
	View     string `json:"view"`
}

func runLinks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b := linkBuilder(cfg)

	results := make([]pageLinks, 0, len(args))
	for _, arg := range args {
		url := page.URLPath(arg)
		results = append(results, pageLinks{
			Page:     url,
			Markdown: links.MarkdownURL(url),
			Edit:     b.GitHubEditURL(url),
			View:     b.GitHubPageURL(url),
		})
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, r := range results {
		fmt.Printf("%s\n  markdown: %s\n  edit:     %s\n  view:     %s\n", r.Page, r.Markdown, r.Edit, r.View)
	}
	return nil
}
