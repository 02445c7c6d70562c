// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmbuilder/dmb/internal/builder"
	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/internal/modtools"
)

// newBuildCommand creates the `dmb build` command.
func newBuildCommand(app *App) *cobra.Command {
	opts := &builder.Options{}
	cmd := &cobra.Command{
		Use:   "build [mods...]",
		Short: "Build mods with the Stingray compiler",
		Long: `Compile mods and copy the resulting bundles into each mod's bundle folder.

Without arguments every mod in the mods folder is built.`,
		Example: `  dmb build
  dmb build my_mod other_mod --verbose
  dmb build my_mod --clean --ignore-errors`,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.resolve(cmd)
			if err == nil {
				err = buildMods(cmd.Context(), app, snap, args, *opts)
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

func addBuildFlags(flags *pflag.FlagSet, opts *builder.Options) {
	flags.BoolVar(&opts.IgnoreErrors, "ignore-errors", false, "keep going when the compiler fails")
	flags.BoolVar(&opts.Verbose, "verbose", false, "show the compiler output")
	flags.BoolVar(&opts.Clean, "clean", false, "remove the temp files of the mod first")
}

// buildMods builds each named mod, or every mod when names is empty. All mods
// are attempted; the failures are returned together. An empty mods folder
// isn't an error.
func buildMods(ctx context.Context, app *App, snap *config.Snapshot, names []string, opts builder.Options) error {
	if len(names) == 0 {
		var err error
		if names, err = modtools.ListMods(app.Fs, snap); err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(app.stdout, WarningStyle.Render("No mods to build"))
			return nil
		}
	}

	toolsDir, err := modtools.ToolsDir(app.Fs, snap, app.Logger)
	if err != nil {
		return err
	}
	opts.ToolsDir = toolsDir

	b := app.builder()
	var errs []error
	for _, name := range names {
		if err := modtools.CheckExisting(app.Fs, snap, name, false); err != nil {
			errs = append(errs, err)
			continue
		}
		res, err := b.Build(ctx, snap, name, opts)
		if err != nil {
			errs = append(errs, err)
			fmt.Fprintf(app.stderr, "%s %s\n", ErrorStyle.Render("✗"), name)
			continue
		}
		fmt.Fprintf(app.stdout, "%s Built %s (%d bundle(s))\n",
			SuccessStyle.Render("✓"), CmdStyle.Render(name), len(res.Bundles))
	}
	return errors.Join(errs...)
}
