// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/internal/modtools"
	"github.com/dmbuilder/dmb/internal/uploader"
)

// errNoModsGiven is returned by upload without mods and without --all.
var errNoModsGiven = errors.New("specify the mods to upload or use --all")

// newUploadCommand creates the `dmb upload` command.
func newUploadCommand(app *App) *cobra.Command {
	var (
		all        bool
		changeNote string
	)
	cmd := &cobra.Command{
		Use:   "upload [mods...]",
		Short: "Upload mods to the Steam Workshop",
		Long: `Upload built mods with the Workshop uploader of the game's SDK.

The item cfg of each mod decides what is uploaded. The Workshop id is saved
in it after the first upload.`,
		Example: `  dmb upload my_mod -n "Fixed a crash"
  dmb upload --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return app.fail(cmd, errNoModsGiven)
			}
			snap, err := app.resolve(cmd)
			if err == nil {
				err = uploadMods(cmd.Context(), app, snap, args, changeNote)
			}
			if err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "upload every mod in the mods folder")
	cmd.Flags().StringVarP(&changeNote, "note", "n", "", "change note shown on the Workshop page")
	return cmd
}

// uploadMods uploads each named mod, or every mod when names is empty. All
// mods are attempted; the failures are returned together. An empty mods
// folder isn't an error.
func uploadMods(ctx context.Context, app *App, snap *config.Snapshot, names []string, changeNote string) error {
	if len(names) == 0 {
		var err error
		if names, err = modtools.ListMods(app.Fs, snap); err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(app.stdout, WarningStyle.Render("No mods to upload"))
			return nil
		}
	}

	toolsDir, err := modtools.ToolsDir(app.Fs, snap, app.Logger)
	if err != nil {
		return err
	}
	opts := uploader.Options{ToolsDir: toolsDir, ChangeNote: changeNote}

	u := app.uploader()
	var errs []error
	for _, name := range names {
		if err := modtools.CheckExisting(app.Fs, snap, name, true); err != nil {
			errs = append(errs, err)
			continue
		}
		res, err := u.Upload(ctx, snap, name, opts)
		if err != nil {
			errs = append(errs, err)
			fmt.Fprintf(app.stderr, "%s %s\n", ErrorStyle.Render("✗"), name)
			continue
		}
		fmt.Fprintf(app.stdout, "%s Uploaded %s (id %s)\n",
			SuccessStyle.Render("✓"), CmdStyle.Render(name), res.PublishedID)
	}
	return errors.Join(errs...)
}
