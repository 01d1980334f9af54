package site

import (
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/agentmodels/pagekit/internal/markdown"
)

// Chapter is one converted chapter of the book.
type Chapter struct {
	Slug        string // File name without extension, e.g. "3a-mdp".
	Title       string
	Description string
	Hidden      bool
	Source      string // Slash path of the markdown source, relative to the book root.
	Path        string // Slash path of the generated page, relative to the site root.
}

// URL is the path the chapter is served under.
func (c Chapter) URL() string { return "/" + c.Path }

func newChapter(source, chaptersDir string, fm markdown.FrontMatter) Chapter {
	base := path.Base(source)
	slug := strings.TrimSuffix(base, path.Ext(base))
	title := fm.Title
	if title == "" {
		title = formatSlug(slug)
	}
	return Chapter{
		Slug:        slug,
		Title:       title,
		Description: fm.Description,
		Hidden:      fm.Hidden,
		Source:      source,
		Path:        path.Join(chaptersDir, slug+".html"),
	}
}

// sortChapters orders chapters by their numeric prefix, then by slug, so
// "10-conclusion" follows "9-ethics" and "3a-mdp" precedes "3b-mdp-gridworld".
func sortChapters(chapters []Chapter) {
	sort.SliceStable(chapters, func(i, j int) bool {
		ni, ri := splitNumber(chapters[i].Slug)
		nj, rj := splitNumber(chapters[j].Slug)
		if ni != nj {
			return ni < nj
		}
		return ri < rj
	})
}

// splitNumber splits a leading decimal number off s. Slugs without one sort last.
func splitNumber(s string) (int, string) {
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(s)
	}
	if end == 0 {
		return int(^uint(0) >> 1), s
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return int(^uint(0) >> 1), s
	}
	return n, s[end:]
}

// formatSlug converts "3a-mdp-gridworld" to "3a Mdp Gridworld".
func formatSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(c rune) bool {
		return c == '-' || c == '_'
	})
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
