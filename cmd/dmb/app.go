// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dmbuilder/dmb/internal/builder"
	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/internal/runtime"
	"github.com/dmbuilder/dmb/internal/templater"
	"github.com/dmbuilder/dmb/internal/uploader"
	"github.com/dmbuilder/dmb/internal/watch"
)

type (
	// EnvironmentFunc builds the resolution environment of one invocation from
	// its command line flags.
	EnvironmentFunc func(flags config.Lookup) (config.Environment, error)

	// WatchFunc watches mod folders until ctx is cancelled.
	WatchFunc func(ctx context.Context, cfg watch.Config) error

	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every command handler receives an App reference and resolves
	// the configuration through it.
	App struct {
		Fs          afero.Fs
		Runtime     runtime.Runtime
		Environment EnvironmentFunc
		Watch       WatchFunc
		Logger      *log.Logger
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Fs          afero.Fs
		Runtime     runtime.Runtime
		Environment EnvironmentFunc
		Watch       WatchFunc
		Logger      *log.Logger
		Stdout      io.Writer
		Stderr      io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Runtime == nil {
		deps.Runtime = runtime.NewNativeRuntime()
	}
	if deps.Logger == nil {
		deps.Logger = log.NewWithOptions(deps.Stderr, log.Options{Prefix: "dmb"})
	}
	if deps.Watch == nil {
		deps.Watch = watch.Run
	}
	if deps.Environment == nil {
		fs, logger := deps.Fs, deps.Logger
		deps.Environment = func(flags config.Lookup) (config.Environment, error) {
			return config.OSEnvironment(fs, flags, logger)
		}
	}

	return &App{
		Fs:          deps.Fs,
		Runtime:     deps.Runtime,
		Environment: deps.Environment,
		Watch:       deps.Watch,
		Logger:      deps.Logger,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
}

// resolve runs the configuration pipeline against the command's flags.
func (a *App) resolve(cmd *cobra.Command) (*config.Snapshot, error) {
	env, err := a.Environment(config.NewFlagLookup(cmd.Flags()))
	if err != nil {
		return nil, err
	}
	if env.Fs == nil {
		env.Fs = a.Fs
	}
	if env.Logger == nil {
		env.Logger = a.Logger
	}
	return config.NewProvider(env).Resolve(cmd.Context(), config.ResolveOptions{})
}

func (a *App) templater() *templater.Templater {
	return templater.New(a.Fs, a.Logger)
}

func (a *App) builder() *builder.Builder {
	return builder.New(a.Fs, a.Runtime, a.Logger, a.stdout, a.stderr)
}

func (a *App) uploader() *uploader.Uploader {
	return uploader.New(a.Fs, a.Runtime, a.Logger)
}
