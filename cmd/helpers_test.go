package cmd

import (
	"context"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/agentmodels/pagekit/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	logger = zap.NewNop().Sugar()
	t.Setenv("CI", "true")

	cfg := config.DefaultConfig()
	cfg.SiteDir = filepath.Join("..", "testdata", "site")
	cfg.OutputDir = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRenderSite(t *testing.T) {
	cfg := testConfig(t)

	report, err := renderSite(context.Background(), cfg)
	if err != nil {
		t.Fatalf("renderSite: %v", err)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("page errors: %v", report.Errors)
	}
	if len(report.Pages) != 2 {
		t.Errorf("pages = %d, want 2", len(report.Pages))
	}
	if report.Formulas != 2 {
		t.Errorf("formulas = %d, want 2", report.Formulas)
	}

	out, err := os.ReadFile(filepath.Join(cfg.OutputDir, "chapters", "1-introduction.html"))
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)
	for _, want := range []string{
		`class="katex-display"`,
		`class="math_finished"`,
		"<em>Ng, Andrew Y and Russell, Stuart J (2000)</em>",
		"Learning the Preferences of Ignorant, Inconsistent Agents",
		"cite:unknown1999",
		`href="https://github.com/agentmodels/agentmodels.org/edit/gh-pages/chapters/1-introduction.md"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered chapter missing %q", want)
		}
	}
	if strings.Contains(html, "reft:ng2000") || strings.Contains(html, "cite:evans2016") {
		t.Error("known citation markers left in place")
	}
}

func TestRenderSiteWithoutMath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Math.Engine = config.MathNone

	report, err := renderSite(context.Background(), cfg)
	if err != nil {
		t.Fatalf("renderSite: %v", err)
	}
	if report.Formulas != 0 {
		t.Errorf("formulas = %d, want 0", report.Formulas)
	}
	if report.Citations == 0 {
		t.Error("citations should still be rendered")
	}
}

func TestRenderSiteMissingBibliography(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bibliography = "/missing.bib"

	report, err := renderSite(context.Background(), cfg)
	if err != nil {
		t.Fatalf("renderSite: %v", err)
	}
	if report.Citations != 0 {
		t.Errorf("citations = %d, want 0", report.Citations)
	}
	if len(report.Errors) != 0 {
		t.Errorf("a missing bibliography must not fail pages: %v", report.Errors)
	}
}

func TestRenderSiteNoPages(t *testing.T) {
	cfg := testConfig(t)
	cfg.SiteDir = t.TempDir()
	if _, err := renderSite(context.Background(), cfg); err == nil {
		t.Error("expected error for a site without pages")
	}
}

func TestNewMathRendererMissingBundle(t *testing.T) {
	cfg := testConfig(t)
	cfg.Math.KaTeXScript = "assets/js/nope.js"
	if _, err := newMathRenderer(cfg); err == nil {
		t.Error("expected error for a missing KaTeX bundle")
	}
}

func TestLinkBuilder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Repository = "https://github.com/example/book/"
	cfg.Branch = "main"
	b := linkBuilder(cfg)
	if got := b.GitHubEditURL("/chapters/2-webppl.html"); got != "https://github.com/example/book/edit/main/chapters/2-webppl.md" {
		t.Errorf("GitHubEditURL = %q", got)
	}
}

func TestVersionString(t *testing.T) {
	tests := []struct {
		name    string
		version string
		info    *debug.BuildInfo
		want    string
	}{
		{"no build info", "dev", nil, "pagekit dev"},
		{
			"ldflags version wins",
			"v1.2.0",
			&debug.BuildInfo{GoVersion: "go1.24.0", Main: debug.Module{Version: "v1.1.0"}},
			"pagekit v1.2.0 (go1.24.0)",
		},
		{
			"module version for go install",
			"dev",
			&debug.BuildInfo{GoVersion: "go1.24.0", Main: debug.Module{Version: "v1.1.0"}},
			"pagekit v1.1.0 (go1.24.0)",
		},
		{
			"local build with revision",
			"dev",
			&debug.BuildInfo{
				GoVersion: "go1.24.0",
				Main:      debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef0123"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			"pagekit dev (go1.24.0) 0123456789ab-dirty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := versionString(tt.version, tt.info); got != tt.want {
				t.Errorf("versionString() = %q, want %q", got, tt.want)
			}
		})
	}
}
