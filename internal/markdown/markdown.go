// Package markdown converts the book's chapter sources to HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// FrontMatter is the YAML header of a chapter.
type FrontMatter struct {
	Layout      string `yaml:"layout"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Hidden      bool   `yaml:"hidden"`
}

// New returns the goldmark instance used for chapters: GFM, highlighted code
// blocks, heading IDs, raw HTML passthrough and $$ math.
func New() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
			MathExtension,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// SplitFrontMatter separates a leading "---" delimited YAML block from the
// markdown body. Sources without one return a zero FrontMatter.
func SplitFrontMatter(src []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(src, []byte("---\n")) && !bytes.HasPrefix(src, []byte("---\r\n")) {
		return fm, src, nil
	}

	rest := src[bytes.IndexByte(src, '\n')+1:]
	for offset := 0; offset < len(rest); {
		nl := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		next := len(rest)
		if nl >= 0 {
			line = rest[offset : offset+nl]
			next = offset + nl + 1
		} else {
			line = rest[offset:]
		}
		if string(bytes.TrimRight(line, "\r ")) == "---" {
			if err := yaml.Unmarshal(rest[:offset], &fm); err != nil {
				return fm, src, fmt.Errorf("parsing front matter: %w", err)
			}
			return fm, rest[next:], nil
		}
		offset = next
	}
	return fm, src, fmt.Errorf("parsing front matter: missing closing ---")
}

// Convert renders a markdown body to HTML.
func Convert(md goldmark.Markdown, body []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}
