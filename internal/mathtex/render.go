package mathtex

import (
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// FinishedClass is added to <body> once every formula has been processed.
const FinishedClass = "math_finished"

var (
	mathTypePattern    = regexp.MustCompile(`^math/tex`)
	displayModePattern = regexp.MustCompile(`mode\s*=\s*display`)
)

// IsMathType reports whether a script type attribute marks TeX source.
func IsMathType(t string) bool { return mathTypePattern.MatchString(t) }

// IsDisplayMode reports whether a math script type requests display mode.
func IsDisplayMode(t string) bool { return displayModePattern.MatchString(t) }

// Failure records a formula the engine rejected.
type Failure struct {
	Index  int // Position among the page's script elements.
	Source string
	Err    error
}

// Result summarises one pass over a page.
type Result struct {
	Rendered int
	Failures []Failure
}

// Renderer walks a page's script elements and typesets the math ones.
type Renderer struct {
	Engine Engine
	// FailFast stops at the first formula the engine rejects. By default the
	// failure is logged and the remaining formulas are still rendered.
	FailFast bool
	Logger   *zap.SugaredLogger
}

// Render typesets every math/tex script in doc, inserting the HTML directly
// before each script element, then marks <body> with FinishedClass.
func (r *Renderer) Render(doc *goquery.Document) (Result, error) {
	var res Result
	if r.Engine == nil {
		return res, ErrNoEngine
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var abort error
	doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		typ := s.AttrOr("type", "")
		if !IsMathType(typ) {
			return true
		}
		text := s.Text()
		if text == "" {
			text, _ = s.Html()
		}

		out, err := r.renderOne(text, Options{DisplayMode: IsDisplayMode(typ)})
		if err != nil {
			res.Failures = append(res.Failures, Failure{Index: i, Source: text, Err: err})
			logger.Warnw("formula not rendered", "index", i, "source", text, "error", err)
			if r.FailFast {
				abort = err
				return false
			}
			return true
		}

		s.BeforeHtml(out)
		res.Rendered++
		return true
	})
	if abort != nil {
		return res, abort
	}

	doc.Find("body").AddClass(FinishedClass)
	return res, nil
}

// renderOne calls the engine, turning a panic into an error.
func (r *Renderer) renderOne(src string, opts Options) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: engine panic: %v", ErrRender, p)
		}
	}()
	return r.Engine.RenderToString(src, opts)
}
