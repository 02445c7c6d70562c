// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/pkg/fspath"
)

// newConfigCommand creates the `dmb config` command.
func newConfigCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config [--<key>=<value>...]",
		Short: "Show or change .dmbrc",
		Long: `Show the settings in .dmbrc.

Any key can be changed with --<key>=<value>; the new values are written back
to the file. --<key>=null restores the default of a key.`,
		Example: `  dmb config
  dmb config --mods_dir=C:/mods --game=1
  dmb config --ignored_dirs=null`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runConfig(cmd, app); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	}
}

func runConfig(cmd *cobra.Command, app *App) error {
	snap, err := app.resolve(cmd)
	if err != nil {
		return err
	}

	for _, w := range snap.Warnings {
		fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("!"), w)
	}

	if len(snap.Overrides) > 0 && !snap.Supplied {
		if err := config.Save(app.Fs, snap); err != nil {
			return err
		}
		fmt.Fprintf(app.stdout, "%s Saved %d change(s)\n", SuccessStyle.Render("✓"), len(snap.Overrides))
	}

	b, err := config.Encode(snap.Data(), config.DefaultSchema())
	if err != nil {
		return err
	}
	location := snap.Filename
	if !snap.Supplied {
		location = fspath.JoinStr(snap.ConfigDir, snap.Filename).String()
	}
	fmt.Fprintln(app.stdout, TitleStyle.Render("Config file:"), CmdStyle.Render(location))
	fmt.Fprint(app.stdout, string(b))
	return nil
}
