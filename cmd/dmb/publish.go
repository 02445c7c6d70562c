// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmbuilder/dmb/internal/builder"
	"github.com/dmbuilder/dmb/internal/modtools"
)

// newPublishCommand creates the `dmb publish` command.
func newPublishCommand(app *App) *cobra.Command {
	var (
		createOpts = &createOptions{}
		buildOpts  = &builder.Options{}
		changeNote string
	)
	cmd := &cobra.Command{
		Use:   "publish <mod>",
		Short: "Create a mod if needed, build it and upload it",
		Example: `  dmb publish my_mod -t "My Mod"
  dmb publish my_mod --clean -n "First release"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			snap, err := app.resolve(cmd)
			if err != nil {
				return app.fail(cmd, err)
			}

			if modtools.CheckExisting(app.Fs, snap, name, false) != nil {
				if err := createMod(cmd.Context(), app, snap, name, createOpts); err != nil {
					return app.fail(cmd, err)
				}
				fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(name))
			}
			if err := buildMods(cmd.Context(), app, snap, []string{name}, *buildOpts); err != nil {
				return app.fail(cmd, err)
			}
			if err := uploadMods(cmd.Context(), app, snap, []string{name}, changeNote); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	}
	addCreateFlags(cmd.Flags(), createOpts)
	addBuildFlags(cmd.Flags(), buildOpts)
	cmd.Flags().StringVarP(&changeNote, "note", "n", "", "change note shown on the Workshop page")
	return cmd
}
