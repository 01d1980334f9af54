package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/agentmodels/pagekit/internal/server"
)

// ServeOptions configures Serve.
type ServeOptions struct {
	Dir      string
	Port     int
	AllowAll bool
	Open     bool

	// Watch lists directories whose changes trigger Rebuild followed by a
	// page reload. Live reload is off when empty.
	Watch   []string
	Ignore  []string // Paths under these directories never trigger a rebuild.
	Rebuild func(ctx context.Context, changed []string) error

	Logger *zap.SugaredLogger
}

// Serve runs the preview server until ctx is done.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	srv := server.New(server.Config{
		Port:       opts.Port,
		Dir:        opts.Dir,
		AllowAll:   opts.AllowAll,
		LiveReload: len(opts.Watch) > 0,
	}, logger)

	url := fmt.Sprintf("http://localhost:%d", opts.Port)
	if opts.Open {
		go openBrowser(url)
	}

	errc := make(chan error, 2)
	go func() { errc <- srv.Start() }()

	if len(opts.Watch) > 0 {
		go func() {
			err := Watch(ctx, WatchOptions{
				Dirs:     opts.Watch,
				Ignore:   opts.Ignore,
				Debounce: 200 * time.Millisecond,
				Logger:   logger,
			}, func(changed []string) {
				if opts.Rebuild != nil {
					if err := opts.Rebuild(ctx, changed); err != nil {
						logger.Errorw("rebuild failed", "error", err)
						return
					}
				}
				srv.Reload(changed...)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				errc <- fmt.Errorf("watching: %w", err)
			}
		}()
	}

	fmt.Printf("Serving %s at %s\n", opts.Dir, url)
	fmt.Println("Press Ctrl+C to stop.")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
