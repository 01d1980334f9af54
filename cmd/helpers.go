package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/agentmodels/pagekit/internal/citations"
	"github.com/agentmodels/pagekit/internal/config"
	"github.com/agentmodels/pagekit/internal/links"
	"github.com/agentmodels/pagekit/internal/mathtex"
	"github.com/agentmodels/pagekit/internal/progress"
	"github.com/agentmodels/pagekit/internal/site"
	"github.com/agentmodels/pagekit/internal/walker"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `pagekit init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func linkBuilder(cfg *config.Config) links.Builder {
	return links.Builder{
		Repository:   cfg.Repository,
		Branch:       cfg.Branch,
		ChaptersPath: cfg.ChaptersPath,
	}
}

// newMathRenderer returns nil when math.engine is none.
func newMathRenderer(cfg *config.Config) (*mathtex.Renderer, error) {
	if cfg.Math.Engine == config.MathNone {
		return nil, nil
	}
	engine, err := mathtex.LoadKaTeX(cfg.KaTeXScriptPath())
	if err != nil {
		return nil, fmt.Errorf("loading KaTeX: %w", err)
	}
	return &mathtex.Renderer{Engine: engine, FailFast: cfg.Math.FailFast, Logger: logger}, nil
}

// newCitationRenderer starts fetching the bibliography: over HTTP when a
// base_url is configured, from the site directory otherwise.
func newCitationRenderer(ctx context.Context, cfg *config.Config) *citations.Renderer {
	var f citations.Fetcher
	if cfg.BaseURL != "" {
		f = citations.NewHTTPFetcher(cfg.BaseURL)
	} else {
		f = citations.FSFetcher{FS: os.DirFS(cfg.SiteDir)}
	}
	return citations.NewRenderer(citations.Fetch(ctx, f, cfg.Bibliography), logger)
}

// renderSite runs the page processor over every page of the built site.
func renderSite(ctx context.Context, cfg *config.Config) (*site.Report, error) {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: cfg.SiteDir,
		Include: cfg.Include,
		Exclude: cfg.Exclude,
		Kinds:   []walker.Kind{walker.KindPage},
	})
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no pages found in %s", cfg.SiteDir)
	}

	math, err := newMathRenderer(cfg)
	if err != nil {
		return nil, err
	}
	lb := linkBuilder(cfg)

	proc := &site.Processor{
		Links:       &lb,
		Citations:   newCitationRenderer(ctx, cfg),
		Math:        math,
		OutputDir:   cfg.OutputDir,
		Concurrency: cfg.MaxConcurrency,
		Reporter:    progress.NewReporter("Rendering pages"),
		Logger:      logger,
	}
	return proc.Process(ctx, files)
}

// buildSite converts the chapter sources into the site directory.
func buildSite(cfg *config.Config) (*site.BuildResult, error) {
	b := &site.Builder{
		SourceDir:   ".",
		ChaptersDir: cfg.ChaptersDir,
		OutputDir:   cfg.SiteDir,
		Title:       cfg.Title,
		Links:       linkBuilder(cfg),
		Logger:      logger,
	}
	return b.Build()
}

func printReport(r *site.Report) {
	fmt.Printf("Rendered %d pages: %d formulas, %d citations, %d links\n",
		len(r.Pages), r.Formulas, r.Citations, r.Links)
	if r.MathFailures > 0 {
		fmt.Printf("  %d formulas left as source (see log)\n", r.MathFailures)
	}
	for _, err := range r.Errors {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	}
}
