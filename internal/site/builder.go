package site

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/agentmodels/pagekit/internal/links"
	"github.com/agentmodels/pagekit/internal/markdown"
	"github.com/agentmodels/pagekit/internal/walker"
)

// ErrNoChapters is returned when the chapters directory holds no markdown.
var ErrNoChapters = errors.New("no chapters found")

// Builder converts the book's markdown chapters into a static HTML site.
type Builder struct {
	SourceDir   string // Book root; static files here are copied as-is.
	ChaptersDir string // Relative to SourceDir.
	OutputDir   string
	Title       string
	Links       links.Builder
	Logger      *zap.SugaredLogger
}

// BuildResult describes a finished build.
type BuildResult struct {
	Chapters []Chapter
	Copied   int // Static files copied from SourceDir.
}

// chapterData holds the data passed to chapterTemplate.
type chapterData struct {
	SiteTitle string
	Chapter   Chapter
	Chapters  []Chapter
	Content   template.HTML
	BasePath  string
}

type indexData struct {
	SiteTitle string
	Chapters  []Chapter
}

// Build writes one page per chapter, an index page, a search index and the
// static files of SourceDir to OutputDir.
func (b *Builder) Build() (*BuildResult, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	chaptersRoot := filepath.Join(b.SourceDir, b.ChaptersDir)
	sources, err := walker.Walk(walker.WalkerConfig{
		RootDir: chaptersRoot,
		Kinds:   []walker.Kind{walker.KindMarkdown},
	})
	if err != nil {
		return nil, fmt.Errorf("listing chapters: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoChapters, chaptersRoot)
	}

	md := markdown.New()
	funcs := b.Links.FuncMap()
	chapterTmpl, err := template.New("chapter").Funcs(funcs).Parse(chapterTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing chapter template: %w", err)
	}
	indexTmpl, err := template.New("index").Funcs(funcs).Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}

	chaptersDir := filepath.ToSlash(filepath.Clean(b.ChaptersDir))
	chapters := make([]Chapter, 0, len(sources))
	contents := make(map[string]template.HTML, len(sources))
	var search []SearchEntry
	for _, src := range sources {
		raw, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, err
		}
		fm, body, err := markdown.SplitFrontMatter(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.RelPath, err)
		}
		ch := newChapter(path.Join(chaptersDir, src.RelPath), chaptersDir, fm)
		html, err := markdown.Convert(md, body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.RelPath, err)
		}
		chapters = append(chapters, ch)
		contents[ch.Slug] = template.HTML(html)
		if !ch.Hidden {
			search = append(search, newSearchEntry(ch, body))
		}
	}
	sortChapters(chapters)

	visible := make([]Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if !ch.Hidden {
			visible = append(visible, ch)
		}
	}

	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(b.OutputDir, "style.css"), []byte(cssContent), 0o644); err != nil {
		return nil, err
	}

	for _, ch := range chapters {
		data := chapterData{
			SiteTitle: b.Title,
			Chapter:   ch,
			Chapters:  visible,
			Content:   contents[ch.Slug],
			BasePath:  strings.Repeat("../", strings.Count(ch.Path, "/")),
		}
		if err := executeTo(chapterTmpl, data, filepath.Join(b.OutputDir, filepath.FromSlash(ch.Path))); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", ch.Source, err)
		}
		logger.Debugw("chapter built", "source", ch.Source, "page", ch.Path)
	}

	if err := executeTo(indexTmpl, indexData{SiteTitle: b.Title, Chapters: visible}, filepath.Join(b.OutputDir, "index.html")); err != nil {
		return nil, fmt.Errorf("rendering index: %w", err)
	}
	if err := WriteSearchIndex(search, filepath.Join(b.OutputDir, "search-index.json")); err != nil {
		return nil, fmt.Errorf("writing search index: %w", err)
	}

	copied, err := b.copyStatic()
	if err != nil {
		return nil, err
	}

	logger.Infow("site built", "chapters", len(chapters), "static_files", copied, "output", b.OutputDir)
	return &BuildResult{Chapters: chapters, Copied: copied}, nil
}

// copyStatic copies every non-markdown file of SourceDir, such as the
// bibliography and the KaTeX assets, into OutputDir.
func (b *Builder) copyStatic() (int, error) {
	exclude := []string{".pagekit.yml"}
	if rel, err := filepath.Rel(b.SourceDir, b.OutputDir); err == nil && !strings.HasPrefix(rel, "..") {
		if rel == "." {
			return 0, nil
		}
		exclude = append(exclude, filepath.ToSlash(rel)+"/**")
	}
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: b.SourceDir,
		Exclude: exclude,
		Kinds:   []walker.Kind{walker.KindOther, walker.KindPage},
	})
	if err != nil {
		return 0, fmt.Errorf("listing static files: %w", err)
	}
	for _, f := range files {
		if err := copyFile(f.Path, filepath.Join(b.OutputDir, filepath.FromSlash(f.RelPath))); err != nil {
			return 0, err
		}
	}
	return len(files), nil
}

func executeTo(tmpl *template.Template, data any, outPath string) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
