// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for dmb.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmbuilder/dmb/internal/config"
)

const flagDebug = "debug"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dmb",
		Short: "Create, build and upload Vermintide mods",
		Long: TitleStyle.Render("dmb") + SubtitleStyle.Render(" - Vermintide Mod Builder") + `

dmb creates mods from a template, compiles them with the Stingray
compiler of the game's SDK and uploads them to the Steam Workshop.

Settings are kept in .dmbrc, which is created with defaults on first use.

` + SubtitleStyle.Render("Examples:") + `
  dmb create my_mod             Create a mod from the template
  dmb build my_mod              Build a mod
  dmb upload my_mod -n "Fixes"  Upload a mod with a change note
  dmb config --mods_dir=mods    Save the mods folder in .dmbrc`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadUISettings(cmd.Flags())
			if err != nil {
				return app.fail(cmd, err)
			}
			settings.apply(app.Logger)
			return nil
		},
	}

	addPersistentFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newCreateCommand(app))
	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newUploadCommand(app))
	rootCmd.AddCommand(newPublishCommand(app))
	rootCmd.AddCommand(newWatchCommand(app))

	return rootCmd
}

// addPersistentFlags registers the flags read by the configuration pipeline.
// Every schema key also gets a hidden --<key> flag unless a visible flag
// already owns the name.
func addPersistentFlags(flags *pflag.FlagSet) {
	flags.StringP(config.FlagFolder, config.FlagFolderShort, "", "mods folder for this run")
	flags.StringP(config.FlagRunGame, config.FlagGameShort, "", "game number (1 or 2) for this run only")
	flags.String(config.FlagGame, "", "game number (1 or 2), saved to .dmbrc")
	flags.String(config.FlagRC, "", "folder holding .dmbrc")
	flags.Bool(config.FlagReset, false, "recreate .dmbrc from defaults")
	flags.Bool(config.FlagCwd, false, "treat the current folder as the executable folder")
	flags.Bool(config.FlagDot, false, "include dot files and folders")
	flags.Bool(config.FlagIncludeDotFiles, false, "include dot files and folders")
	flags.Bool(config.FlagUseFallback, false, "use the fallback tools folder")
	flags.Bool(config.FlagSource, false, "copy mod sources next to the bundles")
	flags.Bool(config.FlagCopySourceCode, false, "copy mod sources next to the bundles")
	flags.String(config.FlagTemplate, "", "template folder")
	flags.Bool(flagDebug, false, "enable debug logging")

	for _, e := range config.DefaultSchema().Entries() {
		if flags.Lookup(e.Key) != nil {
			continue
		}
		flags.String(e.Key, "", fmt.Sprintf("set %s (%s) in .dmbrc, %q restores the default", e.Key, e.Kind, config.NullToken))
		if e.Kind == config.KindBoolean {
			flags.Lookup(e.Key).NoOptDefVal = "true"
		}
		_ = flags.MarkHidden(e.Key)
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(int(exitCodeOf(err)))
	}
}
