package site

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentmodels/pagekit/internal/links"
)

func writeBook(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

var bookFiles = map[string]string{
	"chapters/1-introduction.md": "---\nlayout: chapter\ntitle: \"Introduction\"\ndescription: \"Motivating the problem.\"\n---\n\n" +
		"## Motivation\n\nIRL was introduced by reft:ng2000.\n\n$$V(s) = \\max_a Q(s, a)$$\n\n" +
		"~~~~\n// simpleAgent\nvar agent = 1;\n~~~~\n",
	"chapters/10-conclusion.md": "---\ntitle: Conclusion\n---\n\nThe end.\n",
	"chapters/2-webppl.md":      "---\ntitle: WebPPL\n---\n\nSee cite:evans2016.\n",
	"chapters/draft.md":         "---\ntitle: Draft\nhidden: true\n---\n\nWork in progress.\n",
	"bibliography.bib":          "@misc{ng2000, title={A}}\n",
	"assets/css/katex.min.css":  ".katex{}\n",
	".pagekit.yml":              "branch: gh-pages\n",
}

func newTestBuilder(src, out string) *Builder {
	return &Builder{
		SourceDir:   src,
		ChaptersDir: "chapters",
		OutputDir:   out,
		Title:       "Modeling Agents",
		Links:       links.NewBuilder(),
	}
}

func TestBuild(t *testing.T) {
	src := writeBook(t, bookFiles)
	out := t.TempDir()

	res, err := newTestBuilder(src, out).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Chapters) != 4 {
		t.Fatalf("chapters = %d, want 4", len(res.Chapters))
	}
	gotOrder := []string{res.Chapters[0].Slug, res.Chapters[1].Slug, res.Chapters[2].Slug}
	wantOrder := []string{"1-introduction", "2-webppl", "10-conclusion"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Errorf("chapter %d = %q, want %q", i, gotOrder[i], wantOrder[i])
		}
	}

	intro, err := os.ReadFile(filepath.Join(out, "chapters", "1-introduction.html"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"<title>Introduction | Modeling Agents</title>",
		`href="https://github.com/agentmodels/agentmodels.org/edit/gh-pages/chapters/1-introduction.md"`,
		`href="https://github.com/agentmodels/agentmodels.org/blob/gh-pages/chapters/1-introduction.md"`,
		`<script type="math/tex; mode=display">V(s) = \max_a Q(s, a)</script>`,
		"reft:ng2000",
		"simpleAgent",
		`href="../style.css"`,
		`<li class="active"><a href="../chapters/1-introduction.html">Introduction</a></li>`,
	} {
		if !strings.Contains(string(intro), want) {
			t.Errorf("chapter page missing %q", want)
		}
	}
	if strings.Contains(string(intro), ">Draft<") {
		t.Error("hidden chapter listed in navigation")
	}

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(index), "Motivating the problem.") {
		t.Errorf("index missing description: %s", index)
	}
	if !strings.Contains(string(index), `href="https://github.com/agentmodels/agentmodels.org/blob/gh-pages/chapters"`) {
		t.Errorf("index missing repository link: %s", index)
	}
	if strings.Index(string(index), "WebPPL") > strings.Index(string(index), "Conclusion") {
		t.Error("index chapters out of order")
	}
}

func TestBuildCopiesStaticFiles(t *testing.T) {
	src := writeBook(t, bookFiles)
	out := t.TempDir()

	res, err := newTestBuilder(src, out).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Copied != 2 {
		t.Errorf("copied = %d, want 2", res.Copied)
	}
	for _, rel := range []string{"bibliography.bib", "assets/css/katex.min.css", "style.css"} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("%s not in output: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, ".pagekit.yml")); err == nil {
		t.Error("config file copied to output")
	}
	if _, err := os.Stat(filepath.Join(out, "chapters", "1-introduction.md")); err == nil {
		t.Error("markdown source copied to output")
	}
}

func TestBuildOutputInsideSource(t *testing.T) {
	src := writeBook(t, bookFiles)
	out := filepath.Join(src, "_site")

	if _, err := newTestBuilder(src, out).Build(); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	res, err := newTestBuilder(src, out).Build()
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if res.Copied != 2 {
		t.Errorf("copied = %d, want 2 (output dir must not be copied into itself)", res.Copied)
	}
}

func TestBuildSearchIndex(t *testing.T) {
	src := writeBook(t, bookFiles)
	out := t.TempDir()
	if _, err := newTestBuilder(src, out).Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "search-index.json"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []SearchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3 (hidden chapter excluded)", len(entries))
	}
	for _, e := range entries {
		if e.Title == "Introduction" && e.Summary != "Motivating the problem." {
			t.Errorf("summary = %q", e.Summary)
		}
	}
}

func TestBuildNoChapters(t *testing.T) {
	src := writeBook(t, map[string]string{"chapters/readme.txt": "nothing"})
	_, err := newTestBuilder(src, t.TempDir()).Build()
	if !errors.Is(err, ErrNoChapters) {
		t.Errorf("err = %v, want ErrNoChapters", err)
	}
}

func TestBuildBadFrontMatter(t *testing.T) {
	src := writeBook(t, map[string]string{"chapters/1-a.md": "---\ntitle: [unclosed\n---\nbody\n"})
	if _, err := newTestBuilder(src, t.TempDir()).Build(); err == nil {
		t.Error("expected front matter error")
	}
}
