package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Math script types understood by the page math renderer.
const (
	inlineScriptType  = "math/tex"
	displayScriptType = "math/tex; mode=display"
)

var (
	KindMath      = ast.NewNodeKind("TeXMath")
	KindMathBlock = ast.NewNodeKind("TeXMathBlock")
)

var dollars = []byte("$$")

// Math is an inline $$...$$ formula. A formula that makes up a whole
// paragraph is rendered in display mode.
type Math struct {
	ast.BaseInline
	Source  []byte
	Display bool
}

func (n *Math) Kind() ast.NodeKind { return KindMath }

func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Source": string(n.Source)}, nil)
}

// MathBlock is a display formula fenced by lines holding only $$.
type MathBlock struct {
	ast.BaseBlock
}

func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

func (n *MathBlock) IsRaw() bool { return true }

type inlineParser struct{}

func (inlineParser) Trigger() []byte { return []byte{'$'} }

func (inlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, dollars) {
		return nil
	}
	end := bytes.Index(line[2:], dollars)
	if end < 0 {
		return nil
	}
	src := line[2 : 2+end]
	if len(bytes.TrimSpace(src)) == 0 {
		return nil
	}
	block.Advance(end + 4)
	return &Math{Source: append([]byte(nil), src...)}
}

type blockParser struct{}

func (blockParser) Trigger() []byte { return []byte{'$'} }

func (blockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, _ := reader.PeekLine()
	if !bytes.Equal(bytes.TrimSpace(line), dollars) {
		return nil, parser.NoChildren
	}
	return &MathBlock{}, parser.NoChildren
}

func (blockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if bytes.Equal(bytes.TrimSpace(line), dollars) {
		reader.Advance(segment.Len() - 1)
		return parser.Close
	}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (blockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (blockParser) CanInterruptParagraph() bool { return true }

func (blockParser) CanAcceptIndentedLine() bool { return false }

// displayTransformer promotes a formula standing alone in its paragraph to
// display mode, as kramdown does.
type displayTransformer struct{}

func (displayTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindParagraph {
			return ast.WalkContinue, nil
		}
		var only *Math
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if m, ok := c.(*Math); ok && only == nil {
				only = m
				continue
			}
			if t, ok := c.(*ast.Text); ok && len(bytes.TrimSpace(t.Segment.Value(source))) == 0 {
				continue
			}
			return ast.WalkSkipChildren, nil
		}
		if only != nil {
			only.Display = true
		}
		return ast.WalkSkipChildren, nil
	})
}

type mathRenderer struct{}

func (mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMath, renderMath)
	reg.Register(KindMathBlock, renderMathBlock)
}

func renderMath(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	m := n.(*Math)
	writeScript(w, string(m.Source), m.Display)
	return ast.WalkSkipChildren, nil
}

func renderMathBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
	writeScript(w, strings.TrimSpace(b.String()), true)
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

func writeScript(w util.BufWriter, src string, display bool) {
	typ := inlineScriptType
	if display {
		typ = displayScriptType
	}
	_, _ = w.WriteString(`<script type="` + typ + `">`)
	// Script content is raw text; only a closing tag can break out of it.
	_, _ = w.WriteString(strings.ReplaceAll(src, "</", `<\/`))
	_, _ = w.WriteString(`</script>`)
}

// MathExtension turns $$...$$ formulas into math/tex script elements.
var MathExtension goldmark.Extender = mathExtension{}

type mathExtension struct{}

func (mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(blockParser{}, 701)),
		parser.WithInlineParsers(util.Prioritized(inlineParser{}, 501)),
		parser.WithASTTransformers(util.Prioritized(displayTransformer{}, 100)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(mathRenderer{}, 500),
	))
}
