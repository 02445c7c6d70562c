// SPDX-License-Identifier: MPL-2.0

// Package watch reports which mods changed on disk.
//
// Every folder of the watched mods is registered with fsnotify. Events are
// mapped to the mod they belong to and coalesced for a debounce period, so
// the callback fires once with every mod touched in that window.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce lets an editor's write-then-rename settle into one rebuild.
const defaultDebounce = 500 * time.Millisecond

// defaultIgnores are editor and OS files that never trigger a rebuild. They
// are matched against paths relative to the mod folder.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
	"**/Thumbs.db",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// ModsDir is the mods folder as an OS path.
		ModsDir string
		// Mods are the names of the mod folders to watch.
		Mods []string
		// SkipDirs are folders inside every mod, relative to the mod folder,
		// that are neither watched nor reported. The bundle folders belong here.
		SkipDirs []string
		// Ignore are extra doublestar patterns, relative to the mod folder,
		// for files that never trigger a rebuild.
		Ignore []string
		// Debounce is the quiet period after the last event. Zero or
		// negative values fall back to defaultDebounce.
		Debounce time.Duration
		// OnChange receives the sorted names of the mods that changed. Its
		// error is logged and watching goes on.
		OnChange func(ctx context.Context, mods []string) error
		// Logger receives progress messages. Defaults to discarding them.
		Logger *log.Logger
	}

	// Watcher monitors mod folders. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		modsDir  string
		ignores  []string
		debounce time.Duration
		logger   *log.Logger
		started  atomic.Bool
	}
)

// Run watches the mods described by cfg until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	w, err := New(cfg)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// New registers every folder of the configured mods with fsnotify. A missing
// mod folder is an error.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Mods) == 0 {
		return nil, errors.New("watch: no mods to watch")
	}
	modsDir, err := filepath.Abs(cfg.ModsDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve mods folder: %w", err)
	}
	if err := validatePatterns(cfg.Ignore); err != nil {
		return nil, err
	}

	ignores := make([]string, 0, len(defaultIgnores)+len(cfg.Ignore)+2*len(cfg.SkipDirs))
	ignores = append(ignores, defaultIgnores...)
	ignores = append(ignores, cfg.Ignore...)
	for _, d := range cfg.SkipDirs {
		d = strings.Trim(filepath.ToSlash(d), "/")
		if d == "" {
			continue
		}
		d = doublestar.EscapeMeta(d)
		ignores = append(ignores, d, d+"/**")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		modsDir:  modsDir,
		ignores:  ignores,
		debounce: debounce,
		logger:   logger,
	}
	for _, mod := range cfg.Mods {
		if err := w.addMod(mod); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				logger.Warn("close watcher", "err", closeErr)
			}
			return nil, err
		}
	}
	return w, nil
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when fsnotify breaks down.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire skips a round while the previous callback is still building and
	// retries after another debounce period.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous build still running, waiting")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		mods := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Info("mods changed", "mods", mods)
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, mods); err != nil {
				w.logger.Error("rebuild failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			mod, rel, ok := w.modFor(evt.Name)
			if !ok || w.isIgnored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name, rel)
			}
			w.logger.Debug("change", "mod", mod, "path", rel, "op", evt.Op)

			mu.Lock()
			pending[mod] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// addMod registers the mod folder and every folder below it that isn't
// skipped.
func (w *Watcher) addMod(mod string) error {
	root := filepath.Join(w.modsDir, mod)
	fi, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch: mod %q: %w", mod, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("watch: mod %q is not a folder", mod)
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil //nolint:nilerr // skip paths that cannot be made relative
		}
		if rel != "." && w.isIgnored(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add folder %q: %w", path, err)
		}
		return nil
	})
}

// maybeAddDir watches a folder created after the initial walk.
func (w *Watcher) maybeAddDir(path, rel string) {
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() || w.isIgnored(rel) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("watch new folder", "path", path, "err", err)
	}
}

// modFor splits an event path into the mod it belongs to and the slash path
// inside that mod. Paths outside the watched mods, and the mod folders
// themselves, report false.
func (w *Watcher) modFor(path string) (mod, rel string, ok bool) {
	r, err := filepath.Rel(w.modsDir, path)
	if err != nil {
		return "", "", false
	}
	mod, rel, found := strings.Cut(filepath.ToSlash(r), "/")
	if !found || rel == "" || !slices.Contains(w.cfg.Mods, mod) {
		return "", "", false
	}
	return mod, rel, true
}

// isIgnored reports whether rel, relative to a mod folder, matches an ignore
// pattern.
func (w *Watcher) isIgnored(rel string) bool {
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}
	return nil
}

// isFatal reports errors after which the watcher can't recover: running out
// of inotify watches or file descriptors.
func isFatal(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}
