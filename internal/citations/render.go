package citations

import (
	"context"
	"regexp"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// blockSelector picks the elements whose markup is scanned for markers.
const blockSelector = "p, li"

// markers lists the citation prefixes in the order they are substituted.
var markers = []struct {
	prefix string
	format func(Record) string
}{
	{"cite", FormatCitation},
	{"reft", FormatReft},
	{"refp", FormatRefp},
}

// substitution is one compiled marker rewrite.
type substitution struct {
	pattern *regexp.Regexp
	target  string
}

// substitutions compiles the marker rewrites once per bibliography, ordered
// by key in file order and then by prefix.
func (b *Bibliography) substitutions() []substitution {
	b.compile.Do(func() {
		subs := make([]substitution, 0, len(b.Keys)*len(markers))
		for _, key := range b.Keys {
			rec := b.Records[key]
			for _, m := range markers {
				subs = append(subs, substitution{
					pattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(m.prefix+":"+key)),
					target:  m.format(rec),
				})
			}
		}
		b.subs = subs
	})
	return b.subs
}

// Apply replaces every citation marker in doc whose key is in the
// bibliography. For each key in file order and each prefix, it rewrites the
// full inner markup of every p and li element, so later passes see the
// output of earlier ones. It returns the number of markers replaced.
func (b *Bibliography) Apply(doc *goquery.Document) int {
	if b.Len() == 0 {
		return 0
	}
	n := 0
	for _, sub := range b.substitutions() {
		n += replaceHTML(doc, sub.pattern, sub.target)
	}
	return n
}

// replaceHTML substitutes every match of re in the p and li elements of doc.
func replaceHTML(doc *goquery.Document, re *regexp.Regexp, target string) int {
	root := doc.Get(0)
	count := 0
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		// An ancestor rewritten earlier in this pass detaches its old children.
		if !attached(s.Get(0), root) {
			return
		}
		markup, err := s.Html()
		if err != nil {
			return
		}
		found := len(re.FindAllStringIndex(markup, -1))
		if found == 0 {
			return
		}
		s.SetHtml(re.ReplaceAllLiteralString(markup, target))
		count += found
	})
	return count
}

func attached(n, root *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// Renderer applies a bibliography, fetched once, to any number of pages.
type Renderer struct {
	pending *Pending
	logger  *zap.SugaredLogger
	warn    sync.Once
}

// NewRenderer returns a Renderer that waits on pending before each page.
func NewRenderer(pending *Pending, logger *zap.SugaredLogger) *Renderer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Renderer{pending: pending, logger: logger}
}

// Render substitutes citations in doc once the bibliography is available.
// A failed fetch or parse leaves the page untouched and is only logged.
func (r *Renderer) Render(ctx context.Context, doc *goquery.Document) int {
	if r == nil || r.pending == nil {
		return 0
	}
	bib, err := r.pending.Wait(ctx)
	if err != nil {
		r.warn.Do(func() {
			r.logger.Warnw("citations skipped", "error", err)
		})
		return 0
	}
	return bib.Apply(doc)
}

// Bibliography returns the fetched bibliography, waiting for it if needed.
func (r *Renderer) Bibliography(ctx context.Context) (*Bibliography, error) {
	return r.pending.Wait(ctx)
}
