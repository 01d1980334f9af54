package citations

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

// DefaultPath is where the site publishes its bibliography.
const DefaultPath = "/bibliography.bib"

// Fetcher retrieves a site resource by its URL path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// HTTPFetcher GETs resources from a running copy of the site.
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string // e.g. "http://localhost:4000"
}

// NewHTTPFetcher returns an HTTPFetcher with a bounded client timeout.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: baseURL,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	url := strings.TrimSuffix(f.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// FSFetcher reads resources from a built site on disk.
type FSFetcher struct {
	FS fs.FS
}

func (f FSFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(f.FS, strings.TrimPrefix(path, "/"))
}

// Pending is a bibliography fetch in flight.
type Pending struct {
	done chan struct{}
	bib  *Bibliography
	err  error
}

// Fetch starts retrieving and parsing the bibliography at path. It returns
// immediately; the result is available through Wait.
func Fetch(ctx context.Context, f Fetcher, path string) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		data, err := f.Fetch(ctx, path)
		if err != nil {
			p.err = fmt.Errorf("%w: %s: %v", ErrFetch, path, err)
			return
		}
		p.bib, p.err = Parse(data)
	}()
	return p
}

// Resolved returns a Pending that is already complete.
func Resolved(bib *Bibliography, err error) *Pending {
	p := &Pending{done: make(chan struct{}), bib: bib, err: err}
	close(p.done)
	return p
}

// Done is closed once the fetch has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the fetch completes or ctx is cancelled.
func (p *Pending) Wait(ctx context.Context) (*Bibliography, error) {
	select {
	case <-p.done:
		return p.bib, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
