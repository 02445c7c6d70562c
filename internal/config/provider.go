// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/dmbuilder/dmb/pkg/types"
)

type (
	// Provider resolves the configuration of an invocation.
	Provider interface {
		Resolve(ctx context.Context, opts ResolveOptions) (*Snapshot, error)
	}

	envProvider struct {
		env Environment
	}
)

// NewProvider returns a Provider resolving against env.
func NewProvider(env Environment) Provider {
	return &envProvider{env: env}
}

func (p *envProvider) Resolve(ctx context.Context, opts ResolveOptions) (*Snapshot, error) {
	return Resolve(ctx, p.env, opts)
}

// OSEnvironment returns the environment of the running process.
func OSEnvironment(fs afero.Fs, flags Lookup, logger *log.Logger) (Environment, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Environment{}, err
	}
	exe, err := os.Executable()
	if err != nil {
		return Environment{}, err
	}
	// Home is optional.
	home, _ := os.UserHomeDir()

	return Environment{
		Fs:      fs,
		Flags:   flags,
		Cwd:     types.FilesystemPath(filepath.ToSlash(cwd)),
		ExecDir: types.FilesystemPath(filepath.ToSlash(filepath.Dir(exe))),
		HomeDir: types.FilesystemPath(filepath.ToSlash(home)),
		Logger:  logger,
	}, nil
}
