package site

import (
	"testing"

	"github.com/agentmodels/pagekit/internal/markdown"
)

func TestSortChapters(t *testing.T) {
	chapters := []Chapter{
		{Slug: "appendix"},
		{Slug: "10-conclusion"},
		{Slug: "3b-mdp-gridworld"},
		{Slug: "3a-mdp"},
		{Slug: "1-introduction"},
		{Slug: "2-webppl"},
	}
	sortChapters(chapters)

	want := []string{"1-introduction", "2-webppl", "3a-mdp", "3b-mdp-gridworld", "10-conclusion", "appendix"}
	for i, w := range want {
		if chapters[i].Slug != w {
			t.Errorf("chapters[%d] = %q, want %q", i, chapters[i].Slug, w)
		}
	}
}

func TestNewChapter(t *testing.T) {
	ch := newChapter("chapters/3a-mdp.md", "chapters", markdown.FrontMatter{Description: "MDPs"})
	if ch.Slug != "3a-mdp" || ch.Path != "chapters/3a-mdp.html" || ch.URL() != "/chapters/3a-mdp.html" {
		t.Errorf("chapter = %+v", ch)
	}
	if ch.Title != "3a Mdp" {
		t.Errorf("fallback title = %q", ch.Title)
	}
	if ch.Description != "MDPs" {
		t.Errorf("description = %q", ch.Description)
	}
}

func TestFormatSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1-introduction", "1 Introduction"},
		{"inverse_planning", "Inverse Planning"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := formatSlug(tt.in); got != tt.want {
			t.Errorf("formatSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewSearchEntry(t *testing.T) {
	body := []byte("## Motivation\n\nAgents plan.\n\n$$\nV(s)\n$$\n\n```\nvar x = 1;\n```\n\n- Inference\n")
	e := newSearchEntry(Chapter{Path: "chapters/1.html", Title: "Intro"}, body)
	if e.Content != "Motivation Agents plan. Inference" {
		t.Errorf("content = %q", e.Content)
	}
	if e.Summary != "Motivation" {
		t.Errorf("summary = %q", e.Summary)
	}
}
