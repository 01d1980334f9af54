// Package codebox extracts the WebPPL code boxes of built chapters into
// standalone scripts.
package codebox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Ext is the extension of extracted scripts.
const Ext = ".wppl"

// Box is the source of one code box.
type Box struct {
	Index int    // 1-based position in the chapter.
	Label string // First word after the leading comment marker.
	Code  string
}

// FileName is "<chapter>_<index>_<label>.wppl".
func (b Box) FileName(chapter string) string {
	return fmt.Sprintf("%s_%d_%s%s", chapter, b.Index, b.Label, Ext)
}

// Extract returns the code of every pre > code element in document order.
func Extract(doc *goquery.Document) []Box {
	var boxes []Box
	doc.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		code := pre.ChildrenFiltered("code").First()
		if code.Length() == 0 {
			return
		}
		src := code.Text()
		boxes = append(boxes, Box{
			Index: len(boxes) + 1,
			Label: Label(src),
			Code:  src,
		})
	})
	return boxes
}

// Label takes the second whitespace-separated word of src (the first being
// the comment marker) and keeps only letters, digits, '_' and '-'.
func Label(src string) string {
	fields := strings.Fields(src)
	if len(fields) < 2 {
		return "untitled"
	}
	label := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			return r
		}
		return -1
	}, fields[1])
	if label == "" {
		return "untitled"
	}
	return label
}

// Write replaces the contents of dir/<chapter>/ with boxes and returns the
// written paths. Scripts from an earlier run are removed first, so renamed
// or deleted boxes leave nothing behind.
func Write(dir, chapter string, boxes []Box) ([]string, error) {
	outDir := filepath.Join(dir, chapter)
	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("clearing %s: %w", outDir, err)
	}
	if len(boxes) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(boxes))
	for _, b := range boxes {
		p := filepath.Join(outDir, b.FileName(chapter))
		if err := os.WriteFile(p, []byte(b.Code), 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// ChapterName is the page's file name without its extension.
func ChapterName(rel string) string {
	base := filepath.Base(filepath.FromSlash(rel))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
