package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentmodels/pagekit/internal/citations"
	"github.com/agentmodels/pagekit/internal/links"
	"github.com/agentmodels/pagekit/internal/mathtex"
	"github.com/agentmodels/pagekit/internal/page"
	"github.com/agentmodels/pagekit/internal/walker"
)

const chapterPage = `<!DOCTYPE html>
<html><head><title>Introduction</title></head>
<body>
<p>IRL was introduced by reft:ng2000.</p>
<p>Utility is <script type="math/tex">U(s)</script> here.</p>
<script type="math/tex; mode=display">V(s)</script>
<ul><li>See refp:ng2000.</li></ul>
<a data-github="edit">Edit</a>
</body></html>`

var errBadFormula = errors.New("bad formula")

// fakeEngine wraps the source in a span, rejecting anything containing "bad".
var fakeEngine = mathtex.EngineFunc(func(src string, opts mathtex.Options) (string, error) {
	if strings.Contains(src, "bad") {
		return "", errBadFormula
	}
	class := "katex"
	if opts.DisplayMode {
		class = "katex-display"
	}
	return `<span class="` + class + `">` + src + `</span>`, nil
})

func testBibliography() *citations.Bibliography {
	return &citations.Bibliography{
		Keys: []string{"ng2000"},
		Records: map[string]citations.Record{
			"ng2000": {
				citations.FieldTitle:  "Algorithms for Inverse Reinforcement Learning",
				citations.FieldAuthor: "Ng, Andrew Y and Russell, Stuart J",
				citations.FieldYear:   "2000",
			},
		},
	}
}

func newTestProcessor(outDir string) *Processor {
	lb := links.NewBuilder()
	return &Processor{
		Links:       &lb,
		Citations:   citations.NewRenderer(citations.Resolved(testBibliography(), nil), nil),
		Math:        &mathtex.Renderer{Engine: fakeEngine},
		OutputDir:   outDir,
		Concurrency: 2,
	}
}

func writeSitePages(t *testing.T, pages map[string]string) []walker.FileInfo {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range pages {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := walker.Walk(walker.WalkerConfig{RootDir: dir, Kinds: []walker.Kind{walker.KindPage}})
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func TestProcessPage(t *testing.T) {
	pg, err := page.Load("chapters/1-introduction.html", strings.NewReader(chapterPage))
	if err != nil {
		t.Fatal(err)
	}
	p := newTestProcessor(t.TempDir())

	pr, err := p.ProcessPage(context.Background(), pg, nil)
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}
	if pr.Formulas != 2 || pr.MathFailures != 0 {
		t.Errorf("formulas = %d, failures = %d", pr.Formulas, pr.MathFailures)
	}
	if pr.Citations != 2 {
		t.Errorf("citations = %d, want 2", pr.Citations)
	}
	if pr.Links != 1 {
		t.Errorf("links = %d, want 1", pr.Links)
	}

	out, _ := pg.HTML()
	for _, want := range []string{
		`<span class="katex">U(s)</span>`,
		`<span class="katex-display">V(s)</span>`,
		"<em>Ng, Andrew Y and Russell, Stuart J (2000)</em>",
		"(<em>Ng, Andrew Y and Russell, Stuart J; 2000</em>)",
		`href="https://github.com/agentmodels/agentmodels.org/edit/gh-pages/chapters/1-introduction.md"`,
		mathtex.FinishedClass,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "reft:") || strings.Contains(out, "refp:") {
		t.Errorf("markers left in output:\n%s", out)
	}
}

func TestProcessPageSkipsFinishedMath(t *testing.T) {
	src := strings.Replace(chapterPage, "<body>", `<body class="math_finished">`, 1)
	pg, err := page.Load("chapters/1-introduction.html", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	pr, err := newTestProcessor(t.TempDir()).ProcessPage(context.Background(), pg, nil)
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}
	if pr.Formulas != 0 {
		t.Errorf("formulas = %d, want 0 on an already rendered page", pr.Formulas)
	}
}

func TestProcessPageMathFailureContinues(t *testing.T) {
	src := strings.Replace(chapterPage, "U(s)", `\bad`, 1)
	pg, err := page.Load("p.html", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	pr, err := newTestProcessor(t.TempDir()).ProcessPage(context.Background(), pg, nil)
	if err != nil {
		t.Fatalf("ProcessPage: %v", err)
	}
	if pr.Formulas != 1 || pr.MathFailures != 1 {
		t.Errorf("formulas = %d, failures = %d", pr.Formulas, pr.MathFailures)
	}
	if pr.Citations != 2 {
		t.Errorf("citations should still render, got %d", pr.Citations)
	}
}

func TestProcessPageMathFailFast(t *testing.T) {
	src := strings.Replace(chapterPage, "U(s)", `\bad`, 1)
	pg, err := page.Load("p.html", strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	p := newTestProcessor(t.TempDir())
	p.Math.FailFast = true

	if _, err := p.ProcessPage(context.Background(), pg, nil); !errors.Is(err, errBadFormula) {
		t.Fatalf("err = %v, want %v", err, errBadFormula)
	}
	if pg.Doc.Find("body").HasClass(mathtex.FinishedClass) {
		t.Error("aborted page must not be marked finished")
	}
}

func TestProcessWritesPages(t *testing.T) {
	files := writeSitePages(t, map[string]string{
		"index.html":                   `<html><body><a data-github="page">Source</a></body></html>`,
		"chapters/1-introduction.html": chapterPage,
		"chapters/2-webppl.html":       `<html><body><p>No math here.</p></body></html>`,
	})
	outDir := t.TempDir()

	report, err := newTestProcessor(outDir).Process(context.Background(), files)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if report.RunID == "" {
		t.Error("missing run id")
	}
	if len(report.Pages) != 3 || len(report.Errors) != 0 {
		t.Fatalf("pages = %d, errors = %v", len(report.Pages), report.Errors)
	}
	if report.Formulas != 2 || report.Citations != 2 || report.Links != 2 {
		t.Errorf("report = %+v", report)
	}

	index, err := os.ReadFile(filepath.Join(outDir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(index), `href="https://github.com/agentmodels/agentmodels.org/blob/gh-pages/chapters"`) {
		t.Errorf("index link not set: %s", index)
	}
	if _, err := os.Stat(filepath.Join(outDir, "chapters", "2-webppl.html")); err != nil {
		t.Errorf("chapter not written: %v", err)
	}
}

func TestProcessCollectsPageErrors(t *testing.T) {
	files := writeSitePages(t, map[string]string{
		"a.html": chapterPage,
		"b.html": strings.Replace(chapterPage, "U(s)", `\bad`, 1),
	})
	p := newTestProcessor(t.TempDir())
	p.Math.FailFast = true

	report, err := p.Process(context.Background(), files)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(report.Pages) != 1 || len(report.Errors) != 1 {
		t.Fatalf("pages = %d, errors = %d", len(report.Pages), len(report.Errors))
	}
	if !errors.Is(report.Err(), errBadFormula) {
		t.Errorf("Err() = %v", report.Err())
	}
}

func TestProcessCancelled(t *testing.T) {
	files := writeSitePages(t, map[string]string{"a.html": chapterPage})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestProcessor(t.TempDir()).Process(ctx, files)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(report.Pages)+len(report.Errors) != 1 {
		t.Errorf("page neither processed nor reported: %+v", report)
	}
}

func TestProcessEmpty(t *testing.T) {
	report, err := newTestProcessor(t.TempDir()).Process(context.Background(), nil)
	if err != nil || len(report.Pages) != 0 {
		t.Errorf("report = %+v, err = %v", report, err)
	}
}

func TestProcessNilStages(t *testing.T) {
	pg, err := page.Load("p.html", strings.NewReader(chapterPage))
	if err != nil {
		t.Fatal(err)
	}
	pr, err := (&Processor{}).ProcessPage(context.Background(), pg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if pr.Formulas+pr.Citations+pr.Links != 0 {
		t.Errorf("stages ran without being configured: %+v", pr)
	}
}
