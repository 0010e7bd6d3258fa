// Package watch re-runs a scan when documents in the input folder change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jackzampolin/lexscan/internal/source"
)

// DefaultDebounce is how long the folder must be quiet before a rerun.
const DefaultDebounce = 750 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Dir        string
	Extensions []string      // defaults to source.DefaultExtensions
	Debounce   time.Duration // defaults to DefaultDebounce
	Logger     *slog.Logger
}

// Watcher watches one folder and calls a scan function after changes settle.
type Watcher struct {
	dir        string
	extensions []string
	debounce   time.Duration
	logger     *slog.Logger
	watcher    *fsnotify.Watcher
	trigger    chan string
}

// New creates a watcher on cfg.Dir. Call Run to start it.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch directory is required")
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = source.DefaultExtensions
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fw.Add(cfg.Dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", cfg.Dir, err)
	}

	return &Watcher{
		dir:        cfg.Dir,
		extensions: source.NormalizeExtensions(cfg.Extensions),
		debounce:   cfg.Debounce,
		logger:     cfg.Logger.With("dir", cfg.Dir),
		watcher:    fw,
		trigger:    make(chan string, 1),
	}, nil
}

// Trigger schedules a rerun for reason, e.g. a config change. Triggers that
// arrive while one is already pending are merged.
func (w *Watcher) Trigger(reason string) {
	select {
	case w.trigger <- reason:
	default:
	}
}

// Run calls scan once, then again each time the folder has been quiet for
// the debounce interval after a relevant change. A failing scan is logged
// and watching continues. Run returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, scan func(context.Context) error) error {
	defer w.watcher.Close()

	run := func(reason string) {
		w.logger.Info("scanning", "reason", reason)
		if err := scan(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("scan failed", "error", err)
		}
	}
	run("start")

	var (
		pending <-chan time.Time
		changed []string
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("document changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			changed = append(changed, filepath.Base(event.Name))
			pending = time.After(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case reason := <-w.trigger:
			pending = nil
			changed = nil
			run(reason)

		case <-pending:
			pending = nil
			run(fmt.Sprintf("%d change(s): %s", len(changed), strings.Join(dedupe(changed), ", ")))
			changed = nil
		}
	}
}

// relevant reports whether an event concerns a document the scan reads.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
