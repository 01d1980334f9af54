// Package mathtex typesets the math/tex script elements of a page.
//
// Pages carry formulas as <script type="math/tex"> elements (display formulas
// add "; mode=display" to the type). Each formula is passed to an Engine and
// the returned HTML is inserted in front of its script element.
package mathtex

import (
	"fmt"
	"os"
	"sync"

	"github.com/dop251/goja"
)

// Options control a single rendering call.
type Options struct {
	DisplayMode bool
}

// Engine turns TeX source into HTML. Implementations return an error for
// input they cannot parse.
type Engine interface {
	RenderToString(src string, opts Options) (string, error)
}

// EngineFunc adapts a plain function to the Engine interface.
type EngineFunc func(src string, opts Options) (string, error)

func (f EngineFunc) RenderToString(src string, opts Options) (string, error) {
	return f(src, opts)
}

// renderShim is evaluated after the KaTeX bundle to get a callable entry point.
const renderShim = `function __pagekitRender(src, display) {
  return katex.renderToString(src, {displayMode: display, throwOnError: true});
}`

// KaTeX runs a KaTeX bundle inside an embedded JavaScript VM. The VM is not
// safe for concurrent use, so calls are serialised.
type KaTeX struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	render goja.Callable
}

// LoadKaTeX reads a katex.min.js bundle from disk and prepares it.
func LoadKaTeX(path string) (*KaTeX, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading KaTeX bundle: %w", err)
	}
	return NewKaTeX(path, string(src))
}

// NewKaTeX evaluates the KaTeX bundle source. name is only used in stack traces.
func NewKaTeX(name, bundle string) (*KaTeX, error) {
	vm := goja.New()
	// The UMD wrapper attaches katex to self when neither module system exists.
	if err := vm.Set("self", vm.GlobalObject()); err != nil {
		return nil, err
	}
	if _, err := vm.RunScript(name, bundle); err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", name, err)
	}
	if _, err := vm.RunString(renderShim); err != nil {
		return nil, fmt.Errorf("installing render shim: %w", err)
	}
	render, ok := goja.AssertFunction(vm.Get("__pagekitRender"))
	if !ok {
		return nil, fmt.Errorf("%w: render entry point missing", ErrNoEngine)
	}
	return &KaTeX{vm: vm, render: render}, nil
}

func (k *KaTeX) RenderToString(src string, opts Options) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	v, err := k.render(goja.Undefined(), k.vm.ToValue(src), k.vm.ToValue(opts.DisplayMode))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return v.String(), nil
}
