// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmbuilder/dmb/internal/builder"
	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/internal/modtools"
	"github.com/dmbuilder/dmb/internal/watch"
	"github.com/dmbuilder/dmb/pkg/fspath"
)

// dotFilePatterns keep dot files and folders from triggering a rebuild
// unless --dot is given.
var dotFilePatterns = []string{"**/.*", "**/.*/**"}

// newWatchCommand creates the `dmb watch` command.
func newWatchCommand(app *App) *cobra.Command {
	opts := &builder.Options{}
	cmd := &cobra.Command{
		Use:   "watch [mods...]",
		Short: "Rebuild mods whenever their files change",
		Long: `Watch mod folders and build a mod again after its files change.

Without arguments every mod in the mods folder is watched. The bundle folders
and ignored_dirs_per_mod are not watched. Press Ctrl+C to stop.`,
		Example: `  dmb watch
  dmb watch my_mod --verbose --ignore-errors`,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.resolve(cmd)
			if err == nil {
				err = watchMods(cmd.Context(), app, snap, args, *opts)
			}
			if err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	}
	addBuildFlags(cmd.Flags(), opts)
	cmd.Flags().BoolVar(&opts.NoWorkshop, "no-workshop", false, "don't copy the bundles into the mod folder")
	return cmd
}

// watchMods rebuilds the named mods, or every mod when names is empty, each
// time their files change. It returns when ctx is cancelled.
func watchMods(ctx context.Context, app *App, snap *config.Snapshot, names []string, opts builder.Options) error {
	if len(names) == 0 {
		var err error
		if names, err = modtools.ListMods(app.Fs, snap); err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(app.stdout, WarningStyle.Render("No mods to watch"))
			return nil
		}
	}

	var errs []error
	for _, name := range names {
		if err := modtools.CheckExisting(app.Fs, snap, name, false); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if _, err := modtools.ToolsDir(app.Fs, snap, app.Logger); err != nil {
		return err
	}

	cfg := watch.Config{
		ModsDir:  fspath.FromSlash(snap.ModsDir),
		Mods:     names,
		SkipDirs: modtools.SkippedModDirs(snap),
		Logger:   app.Logger,
		OnChange: func(ctx context.Context, mods []string) error {
			return buildMods(ctx, app, snap, mods, opts)
		},
	}
	if !snap.IncludeDotFiles {
		cfg.Ignore = dotFilePatterns
	}

	fmt.Fprintf(app.stdout, "%s Watching %d mod(s) in %s\n",
		TitleStyle.Render("●"), len(names), CmdStyle.Render(snap.ModsDir.String()))
	return app.Watch(ctx, cfg)
}
