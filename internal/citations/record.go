package citations

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/nickng/bibtex"
)

// Field names of a citation record.
const (
	FieldTitle   = "TITLE"
	FieldAuthor  = "AUTHOR"
	FieldYear    = "YEAR"
	FieldURL     = "URL"
	FieldJournal = "JOURNAL"
)

// Record is one bibliography entry, keyed by upper-case field name.
// A missing field reads as the empty string.
type Record map[string]string

func (r Record) Title() string   { return r[FieldTitle] }
func (r Record) Author() string  { return r[FieldAuthor] }
func (r Record) Year() string    { return r[FieldYear] }
func (r Record) URL() string     { return r[FieldURL] }
func (r Record) Journal() string { return r[FieldJournal] }

// Bibliography maps citation keys to records. Keys keeps the order in which
// entries appear in the source file.
type Bibliography struct {
	Keys    []string
	Records map[string]Record

	compile sync.Once
	subs    []substitution
}

// Len returns the number of distinct keys.
func (b *Bibliography) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Keys)
}

// Lookup returns the record for key.
func (b *Bibliography) Lookup(key string) (Record, bool) {
	if b == nil {
		return nil, false
	}
	r, ok := b.Records[key]
	return r, ok
}

// Parse reads a BibTeX document. Text outside @entries (comment lines,
// notes, encoding headers) is ignored. Field names are upper-cased and values
// are flattened to plain strings. A repeated key keeps its first position and
// its last record. Input with content but no entries is an ErrParse.
func Parse(data []byte) (*Bibliography, error) {
	src, err := entries(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(src) == 0 && len(bytes.TrimSpace(data)) > 0 {
		return nil, fmt.Errorf("%w: no entries found", ErrParse)
	}
	parsed, err := bibtex.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	bib := &Bibliography{Records: make(map[string]Record, len(parsed.Entries))}
	for _, entry := range parsed.Entries {
		if entry == nil || entry.CiteName == "" {
			continue
		}
		rec := make(Record, len(entry.Fields))
		for name, value := range entry.Fields {
			if value == nil {
				continue
			}
			rec[strings.ToUpper(name)] = unwrap(value.String())
		}
		if _, seen := bib.Records[entry.CiteName]; !seen {
			bib.Keys = append(bib.Keys, entry.CiteName)
		}
		bib.Records[entry.CiteName] = rec
	}
	return bib, nil
}

// entries returns only the @type{...} and @type(...) blocks of data, one per
// paragraph. Text between blocks is dropped, as BibTeX itself does, and a %
// there comments out the rest of its line. @comment blocks are dropped too.
func entries(data []byte) ([]byte, error) {
	var out bytes.Buffer
	for i := 0; i < len(data); {
		switch data[i] {
		case '%':
			nl := bytes.IndexByte(data[i:], '\n')
			if nl < 0 {
				return out.Bytes(), nil
			}
			i += nl + 1
			continue
		case '@':
		default:
			i++
			continue
		}

		start := i
		j := start + 1
		for j < len(data) && isIdentByte(data[j]) {
			j++
		}
		typ := strings.ToLower(string(data[start+1 : j]))
		k := j
		for k < len(data) && isSpace(data[k]) {
			k++
		}
		if typ == "" || k >= len(data) || (data[k] != '{' && data[k] != '(') {
			// A stray @, as in an e-mail address in a note.
			i = start + 1
			continue
		}
		end, ok := closing(data, k)
		if !ok {
			return nil, fmt.Errorf("unterminated @%s entry at byte %d", typ, start)
		}
		if typ != "comment" {
			// Parenthesised entries are rewritten with braces.
			out.Write(data[start:k])
			out.WriteByte('{')
			out.Write(data[k+1 : end])
			out.WriteString("}\n\n")
		}
		i = end + 1
	}
	return out.Bytes(), nil
}

// closing returns the index of the delimiter matching the one at open.
func closing(data []byte, open int) (int, bool) {
	if data[open] == '(' {
		depth := 0
		for i := open; i < len(data); i++ {
			switch data[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return i, true
				}
			}
		}
		return 0, false
	}
	depth := 0
	for i := open; i < len(data); i++ {
		switch data[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// unwrap strips one enclosing {...} group or "..." pair, if it spans the
// whole value.
func unwrap(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < 2 {
		return v
	}
	if v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	if v[0] != '{' {
		return v
	}
	depth := 0
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 && i != len(v)-1 {
				return v
			}
		}
	}
	if depth != 0 {
		return v
	}
	return v[1 : len(v)-1]
}
