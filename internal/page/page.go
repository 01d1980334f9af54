// Package page holds a parsed HTML page of the built site.
package page

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is one HTML document together with its site-relative path.
type Page struct {
	Path string // Slash-separated path relative to the site root.
	Doc  *goquery.Document
}

// Load parses an HTML document from r.
func Load(path string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &Page{Path: filepath.ToSlash(path), Doc: doc}, nil
}

// LoadFile reads and parses the page at root/rel.
func LoadFile(root, rel string) (*Page, error) {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(rel, f)
}

// URLPath is the path the page is served under, e.g. "/chapters/1.html".
func (p *Page) URLPath() string {
	return URLPath(p.Path)
}

// HTML serialises the whole document.
func (p *Page) HTML() (string, error) {
	return p.Doc.Html()
}

// WriteFile serialises the page to root/Path, creating directories as needed.
func (p *Page) WriteFile(root string) error {
	out, err := p.HTML()
	if err != nil {
		return fmt.Errorf("rendering %s: %w", p.Path, err)
	}
	outPath := filepath.Join(root, filepath.FromSlash(p.Path))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(out), 0o644)
}

// URLPath turns a site-relative file path into an absolute URL path.
func URLPath(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(rel, "./")
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return rel
}
