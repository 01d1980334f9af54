package site

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/agentmodels/pagekit/internal/walker"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Dirs     []string
	Ignore   []string
	Debounce time.Duration
	Logger   *zap.SugaredLogger
}

// Watch calls onChange with the changed paths each time the watched trees
// settle after a burst of writes. It returns when ctx is done.
func Watch(ctx context.Context, opts WatchOptions, onChange func(changed []string)) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	ignore := make([]string, 0, len(opts.Ignore))
	for _, dir := range opts.Ignore {
		if abs, err := filepath.Abs(dir); err == nil {
			ignore = append(ignore, abs)
		}
	}
	ignored := func(p string) bool {
		abs, err := filepath.Abs(p)
		if err != nil {
			return false
		}
		for _, dir := range ignore {
			if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}

	addTree := func(root string) error {
		return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if p != root && (walker.ExcludedDir(d.Name()) || ignored(p)) {
				return filepath.SkipDir
			}
			return w.Add(p)
		})
	}
	for _, dir := range opts.Dirs {
		if err := addTree(dir); err != nil {
			return err
		}
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name) || !relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// New directories need their own watch.
				_ = addTree(ev.Name)
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watch error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})
			logger.Infow("change detected", "files", len(changed))
			onChange(changed)
		}
	}
}

// relevant drops chmod-only events and editor swap files.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	return !strings.HasPrefix(base, ".#") &&
		!strings.HasSuffix(base, "~") &&
		!strings.HasSuffix(base, ".swp")
}
