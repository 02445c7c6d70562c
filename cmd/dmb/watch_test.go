// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/dmbuilder/dmb/internal/modtools"
	"github.com/dmbuilder/dmb/internal/watch"
)

// fakeWatch records the watch config and reports the given rounds of
// changed mods before returning.
func fakeWatch(got *watch.Config, rounds ...[]string) WatchFunc {
	return func(ctx context.Context, cfg watch.Config) error {
		*got = cfg
		for _, mods := range rounds {
			if err := cfg.OnChange(ctx, mods); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestWatchCommandRebuildsChangedMods(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.rt.bundles = []string{"0123abcd.mod_bundle"}
	writeMod(t, app.fs, "alpha")
	writeMod(t, app.fs, "beta")
	var cfg watch.Config
	app.Watch = fakeWatch(&cfg, []string{"beta"}, []string{"alpha", "beta"})

	if err := app.run(append([]string{"watch"}, sdkFlags...)...); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if cfg.ModsDir == "" || !slices.Equal(cfg.Mods, []string{"alpha", "beta"}) {
		t.Errorf("watching %v in %q", cfg.Mods, cfg.ModsDir)
	}
	if !slices.Contains(cfg.SkipDirs, "bundleV2") {
		t.Errorf("bundle folder is watched: skip dirs %v", cfg.SkipDirs)
	}
	if len(cfg.Ignore) == 0 {
		t.Error("dot files are watched without --dot")
	}
	if len(app.rt.calls) != 3 {
		t.Errorf("compiler ran %d times, want 3", len(app.rt.calls))
	}
	out := app.stdout.String()
	if !strings.Contains(out, "Watching 2 mod(s)") || strings.Count(out, "Built beta") != 2 {
		t.Errorf("stdout:\n%s", out)
	}
}

func TestWatchCommandNamedMods(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	writeMod(t, app.fs, "alpha")
	writeMod(t, app.fs, "beta")
	var cfg watch.Config
	app.Watch = fakeWatch(&cfg)

	if err := app.run(append([]string{"watch", "beta", "--dot"}, sdkFlags...)...); err != nil {
		t.Fatalf("watch beta: %v", err)
	}
	if !slices.Equal(cfg.Mods, []string{"beta"}) {
		t.Errorf("watching %v, want [beta]", cfg.Mods)
	}
	if len(cfg.Ignore) != 0 {
		t.Errorf("dot files ignored with --dot: %v", cfg.Ignore)
	}
}

func TestWatchCommandFailures(t *testing.T) {
	t.Parallel()

	t.Run("missing mod", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		called := false
		app.Watch = func(context.Context, watch.Config) error {
			called = true
			return nil
		}
		err := app.run(append([]string{"watch", "missing"}, sdkFlags...)...)
		requireExitError(t, err)
		if !errors.Is(err, modtools.ErrModNotFound) {
			t.Errorf("error = %v, want ErrModNotFound", err)
		}
		if called {
			t.Error("started watching a missing mod")
		}
	})

	t.Run("no tools", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		writeMod(t, app.fs, "alpha")
		err := app.run("watch", "--use_fallback", "--fallback_tools_dir2=/nowhere")
		if !errors.Is(err, modtools.ErrToolsNotFound) {
			t.Errorf("error = %v, want ErrToolsNotFound", err)
		}
	})

	t.Run("no mods", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		if err := app.run(append([]string{"watch"}, sdkFlags...)...); err != nil {
			t.Fatalf("watch: %v", err)
		}
		if !strings.Contains(app.stdout.String(), "No mods to watch") {
			t.Errorf("stdout:\n%s", app.stdout.String())
		}
	})

	t.Run("watcher error", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		writeMod(t, app.fs, "alpha")
		app.Watch = func(context.Context, watch.Config) error {
			return errors.New("watch: fatal fsnotify error")
		}
		err := app.run(append([]string{"watch"}, sdkFlags...)...)
		requireExitError(t, err)
	})
}
