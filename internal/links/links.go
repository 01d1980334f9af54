// Package links derives GitHub edit and view URLs for pages of the book.
package links

import (
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Defaults for the agentmodels.org repository.
const (
	DefaultRepository   = "https://github.com/agentmodels/agentmodels.org/"
	DefaultBranch       = "gh-pages"
	DefaultChaptersPath = "chapters"
)

// Builder holds the repository coordinates used to build links.
type Builder struct {
	Repository   string // Base repository URL, with trailing slash.
	Branch       string
	ChaptersPath string // Path shown when linking the site root.
}

// NewBuilder returns a Builder for the default repository.
func NewBuilder() Builder {
	return Builder{
		Repository:   DefaultRepository,
		Branch:       DefaultBranch,
		ChaptersPath: DefaultChaptersPath,
	}
}

// MarkdownURL replaces the 4-byte extension of a page path (".html" minus the
// dot) with "md". The input is not validated.
func MarkdownURL(pageURL string) string {
	if len(pageURL) < 4 {
		return "md"
	}
	return pageURL[:len(pageURL)-4] + "md"
}

// GitHubEditURL returns the URL of the GitHub editor for the page's source.
func (b Builder) GitHubEditURL(pageURL string) string {
	return b.Repository + "edit/" + b.Branch + MarkdownURL(pageURL)
}

// GitHubPageURL returns the URL of the page's source on GitHub. The site root
// links to the chapters directory.
func (b Builder) GitHubPageURL(pageURL string) string {
	if pageURL == "/index.html" || pageURL == "/" {
		return b.Repository + "blob/" + b.Branch + "/" + b.ChaptersPath
	}
	return b.Repository + "blob/" + b.Branch + MarkdownURL(pageURL)
}

// FuncMap exposes the builder to html/template page layouts.
func (b Builder) FuncMap() template.FuncMap {
	return template.FuncMap{
		"markdown_url":    MarkdownURL,
		"github_edit_url": b.GitHubEditURL,
		"github_page_url": b.GitHubPageURL,
	}
}

// Annotate fills the href of every element marked with data-github="edit" or
// data-github="page". It returns the number of links set.
func (b Builder) Annotate(doc *goquery.Document, pageURL string) int {
	n := 0
	doc.Find("[data-github]").Each(func(_ int, s *goquery.Selection) {
		switch strings.ToLower(strings.TrimSpace(s.AttrOr("data-github", ""))) {
		case "edit":
			s.SetAttr("href", b.GitHubEditURL(pageURL))
		case "page", "view":
			s.SetAttr("href", b.GitHubPageURL(pageURL))
		default:
			return
		}
		n++
	})
	return n
}
