package site

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"strings"
)

// SearchEntry represents a single searchable chapter.
type SearchEntry struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// maxSearchContent bounds the text stored per chapter.
const maxSearchContent = 2000

// newSearchEntry extracts searchable text from a chapter's markdown body.
// Code blocks and math are left out.
func newSearchEntry(ch Chapter, body []byte) SearchEntry {
	entry := SearchEntry{
		Path:    ch.Path,
		Title:   ch.Title,
		Summary: ch.Description,
	}

	var words []string
	inFence := false
	inMath := false
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~"):
			inFence = !inFence
			continue
		case line == "$$":
			inMath = !inMath
			continue
		case inFence || inMath || line == "":
			continue
		}
		line = strings.TrimLeft(line, "#>-* ")
		if line != "" {
			words = append(words, line)
		}
	}

	content := strings.Join(words, " ")
	if len(content) > maxSearchContent {
		content = content[:maxSearchContent]
	}
	entry.Content = content

	if entry.Summary == "" && len(words) > 0 {
		entry.Summary = words[0]
	}
	return entry
}

// WriteSearchIndex writes the search index as JSON to the given path.
func WriteSearchIndex(entries []SearchEntry, outputPath string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}
