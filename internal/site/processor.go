package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentmodels/pagekit/internal/citations"
	"github.com/agentmodels/pagekit/internal/links"
	"github.com/agentmodels/pagekit/internal/mathtex"
	"github.com/agentmodels/pagekit/internal/page"
	"github.com/agentmodels/pagekit/internal/progress"
	"github.com/agentmodels/pagekit/internal/walker"
)

// Processor renders built pages: math first, then citations once the
// bibliography is available, then GitHub links. Any stage left nil is skipped.
type Processor struct {
	Links     *links.Builder
	Citations *citations.Renderer
	Math      *mathtex.Renderer

	// OutputDir receives the rendered pages under their relative paths.
	OutputDir   string
	Concurrency int
	Reporter    progress.Reporter
	Logger      *zap.SugaredLogger
}

// PageResult counts what one page received.
type PageResult struct {
	Path         string
	Formulas     int
	MathFailures int
	Citations    int
	Links        int
}

// Report holds collected results and errors from a Process run.
type Report struct {
	RunID        string
	Pages        []PageResult
	Formulas     int
	MathFailures int
	Citations    int
	Links        int
	Errors       []error
}

func (r *Report) add(pr PageResult) {
	r.Pages = append(r.Pages, pr)
	r.Formulas += pr.Formulas
	r.MathFailures += pr.MathFailures
	r.Citations += pr.Citations
	r.Links += pr.Links
}

// Err joins the per-page errors, or returns nil.
func (r *Report) Err() error {
	return errors.Join(r.Errors...)
}

// Process renders files concurrently. Per-page failures are collected in the
// report; the returned error is non-nil only when ctx ends the run early.
func (p *Processor) Process(ctx context.Context, files []walker.FileInfo) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	total := len(files)
	if total == 0 {
		return report, nil
	}

	logger := p.logger().With("run", report.RunID)
	reporter := p.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}
	concurrency := p.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	reporter.Start(total)
	defer reporter.Finish()

	sem := make(chan struct{}, concurrency)
	var mu sync.Mutex
	var processed int64
	done := func(rel string) {
		count := atomic.AddInt64(&processed, 1)
		reporter.Update(int(count), rel)
	}

	var wg sync.WaitGroup
	for _, file := range files {
		select {
		case <-ctx.Done():
			mu.Lock()
			report.Errors = append(report.Errors, fmt.Errorf("render %s: %w", file.RelPath, ctx.Err()))
			mu.Unlock()
			done(file.RelPath)
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(f walker.FileInfo) {
			defer wg.Done()
			defer func() { <-sem }()

			pr, err := p.processFile(ctx, f, logger)
			mu.Lock()
			if err != nil {
				report.Errors = append(report.Errors, fmt.Errorf("render %s: %w", f.RelPath, err))
			} else {
				report.add(pr)
			}
			mu.Unlock()
			done(f.RelPath)
		}(file)
	}

	wg.Wait()

	logger.Infow("pages rendered",
		"pages", len(report.Pages),
		"formulas", report.Formulas,
		"math_failures", report.MathFailures,
		"citations", report.Citations,
		"links", report.Links,
		"errors", len(report.Errors),
	)
	return report, ctx.Err()
}

func (p *Processor) processFile(ctx context.Context, f walker.FileInfo, logger *zap.SugaredLogger) (PageResult, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return PageResult{}, err
	}
	pg, err := page.Load(f.RelPath, file)
	file.Close()
	if err != nil {
		return PageResult{}, err
	}
	pr, err := p.ProcessPage(ctx, pg, logger.With("page", f.RelPath))
	if err != nil {
		return pr, err
	}
	if err := pg.WriteFile(p.OutputDir); err != nil {
		return pr, err
	}
	return pr, nil
}

// ProcessPage runs the enabled stages over one parsed page in place.
func (p *Processor) ProcessPage(ctx context.Context, pg *page.Page, logger *zap.SugaredLogger) (PageResult, error) {
	if logger == nil {
		logger = p.logger()
	}
	pr := PageResult{Path: pg.Path}

	if p.Math != nil {
		if pg.Doc.Find("body").HasClass(mathtex.FinishedClass) {
			logger.Debugw("math already rendered")
		} else {
			m := *p.Math
			m.Logger = logger
			res, err := m.Render(pg.Doc)
			pr.Formulas = res.Rendered
			pr.MathFailures = len(res.Failures)
			if err != nil {
				return pr, err
			}
		}
	}

	if p.Citations != nil {
		pr.Citations = p.Citations.Render(ctx, pg.Doc)
	}

	if p.Links != nil {
		pr.Links = p.Links.Annotate(pg.Doc, pg.URLPath())
	}

	return pr, nil
}

func (p *Processor) logger() *zap.SugaredLogger {
	if p.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return p.Logger
}
