package links

import (
	"bytes"
	"html/template"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestMarkdownURL(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"/chapters/1-introduction.html", "/chapters/1-introduction.md"},
		{"/index.html", "/index.md"},
		{"a.html", "a.md"},
		{"abcd", "md"},
		{"ab", "md"},
		{"", "md"},
	}
	for _, tt := range tests {
		got := MarkdownURL(tt.input)
		if got != tt.want {
			t.Errorf("MarkdownURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMarkdownURLReplacesLastFourBytes(t *testing.T) {
	for _, p := range []string{"/x.html", "/chapters/3a-mdp.html", "/a/b/c/d.html"} {
		got := MarkdownURL(p)
		want := p[:len(p)-4] + "md"
		if got != want {
			t.Errorf("MarkdownURL(%q) = %q, want %q", p, got, want)
		}
	}
}

func TestGitHubEditURL(t *testing.T) {
	b := NewBuilder()
	got := b.GitHubEditURL("/chapters/2-webppl.html")
	want := "https://github.com/agentmodels/agentmodels.org/edit/gh-pages/chapters/2-webppl.md"
	if got != want {
		t.Errorf("GitHubEditURL = %q, want %q", got, want)
	}
}

func TestGitHubPageURL(t *testing.T) {
	b := NewBuilder()
	chapters := "https://github.com/agentmodels/agentmodels.org/blob/gh-pages/chapters"

	tests := []struct {
		input, want string
	}{
		{"/", chapters},
		{"/index.html", chapters},
		{"/chapters/2-webppl.html", "https://github.com/agentmodels/agentmodels.org/blob/gh-pages/chapters/2-webppl.md"},
		{"/about.html", "https://github.com/agentmodels/agentmodels.org/blob/gh-pages/about.md"},
	}
	for _, tt := range tests {
		got := b.GitHubPageURL(tt.input)
		if got != tt.want {
			t.Errorf("GitHubPageURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCustomRepository(t *testing.T) {
	b := Builder{Repository: "https://github.com/me/book/", Branch: "main", ChaptersPath: "src"}
	if got := b.GitHubPageURL("/"); got != "https://github.com/me/book/blob/main/src" {
		t.Errorf("GitHubPageURL(/) = %q", got)
	}
	if got := b.GitHubEditURL("/x.html"); got != "https://github.com/me/book/edit/main/x.md" {
		t.Errorf("GitHubEditURL = %q", got)
	}
}

func TestFuncMap(t *testing.T) {
	b := NewBuilder()
	tmpl := template.Must(template.New("t").Funcs(b.FuncMap()).Parse(
		`<a href="{{github_edit_url .}}">edit</a><a href="{{github_page_url .}}">view</a>`))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, "/chapters/1-introduction.html"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "edit/gh-pages/chapters/1-introduction.md") {
		t.Errorf("missing edit link in %q", out)
	}
	if !strings.Contains(out, "blob/gh-pages/chapters/1-introduction.md") {
		t.Errorf("missing view link in %q", out)
	}
}

func TestAnnotate(t *testing.T) {
	src := `<html><body>
<a data-github="edit">Edit</a>
<a data-github="page">View</a>
<a data-github="other">Other</a>
<a href="/keep">Keep</a>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	n := NewBuilder().Annotate(doc, "/chapters/4-reasoning.html")
	if n != 2 {
		t.Errorf("Annotate set %d links, want 2", n)
	}

	edit, _ := doc.Find(`[data-github="edit"]`).Attr("href")
	if !strings.HasSuffix(edit, "edit/gh-pages/chapters/4-reasoning.md") {
		t.Errorf("edit href = %q", edit)
	}
	view, _ := doc.Find(`[data-github="page"]`).Attr("href")
	if !strings.HasSuffix(view, "blob/gh-pages/chapters/4-reasoning.md") {
		t.Errorf("view href = %q", view)
	}
	if _, ok := doc.Find(`[data-github="other"]`).Attr("href"); ok {
		t.Error("unknown data-github value should not get an href")
	}
}
