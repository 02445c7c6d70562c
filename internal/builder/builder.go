// SPDX-License-Identifier: MPL-2.0

// Package builder compiles mods with the Stingray compiler and lays out the
// Workshop copy of each mod.
package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/internal/modtools"
	"github.com/dmbuilder/dmb/internal/runtime"
	"github.com/dmbuilder/dmb/pkg/fspath"
	"github.com/dmbuilder/dmb/pkg/types"
)

// sourceDirName is the folder inside the bundle folder that receives a copy
// of the mod sources.
const sourceDirName = "source"

// ErrBuildFailed is the sentinel error wrapped by BuildError.
var ErrBuildFailed = errors.New("build failed")

type (
	// Options tune a single build.
	Options struct {
		// ToolsDir is the mod tools folder holding the compiler.
		ToolsDir types.FilesystemPath
		// Clean removes the mod's temp folder before compiling.
		Clean bool
		// Verbose streams the compiler output.
		Verbose bool
		// IgnoreErrors keeps going when the compiler fails. It's combined
		// with ignore_build_errors.
		IgnoreErrors bool
		// NoWorkshop skips copying the results into the mod folder.
		NoWorkshop bool
	}

	// Result describes a finished build.
	Result struct {
		Mod       string
		BundleDir types.FilesystemPath
		Bundles   []string
		ExitCode  types.ExitCode
	}

	// BuildError is returned when the compiler exits with a failure.
	BuildError struct {
		Mod      string
		ExitCode types.ExitCode
		Output   string
	}

	// Builder builds mods.
	Builder struct {
		fs     afero.Fs
		rt     runtime.Runtime
		logger *log.Logger
		stdout io.Writer
		stderr io.Writer
	}
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build %q: compiler exited with code %s", e.Mod, e.ExitCode)
}

// Unwrap returns ErrBuildFailed for errors.Is() compatibility.
func (e *BuildError) Unwrap() error { return ErrBuildFailed }

// New returns a Builder. Compiler output goes to stdout and stderr when
// a build is verbose.
func New(fs afero.Fs, rt runtime.Runtime, logger *log.Logger, stdout, stderr io.Writer) *Builder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{fs: fs, rt: rt, logger: logger, stdout: stdout, stderr: stderr}
}

// CompilerArgs returns the compiler arguments building mod.
func CompilerArgs(snap *config.Snapshot, mod string) []string {
	tempDir := modtools.TempModDir(snap, mod)
	return []string{
		"--compile-for", "win32",
		"--source-dir", fspath.FromSlash(modtools.ModDir(snap, mod)),
		"--data-dir", fspath.FromSlash(fspath.JoinStr(tempDir, "data")),
		"--bundle-dir", fspath.FromSlash(fspath.JoinStr(tempDir, "bundle")),
	}
}

// Build compiles mod and, unless opts.NoWorkshop, copies its bundles into
// the mod's bundle folder.
func (b *Builder) Build(ctx context.Context, snap *config.Snapshot, mod string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tempDir := modtools.TempModDir(snap, mod)
	if opts.Clean {
		b.logger.Info("removing temp folder", "dir", tempDir)
		if err := b.fs.RemoveAll(fspath.FromSlash(tempDir)); err != nil {
			return nil, err
		}
	}
	if err := b.fs.MkdirAll(fspath.FromSlash(tempDir), os.ModePerm); err != nil {
		return nil, err
	}

	b.logger.Info("building mod", "mod", mod)
	execCtx := &runtime.ExecutionContext{
		Context: ctx,
		Path:    fspath.FromSlash(modtools.StingrayPath(opts.ToolsDir)),
		Args:    CompilerArgs(snap, mod),
		WorkDir: fspath.FromSlash(fspath.JoinStr(opts.ToolsDir, config.StingrayDir)),
	}
	var res *runtime.Result
	if opts.Verbose {
		execCtx.Stdout, execCtx.Stderr = b.stdout, b.stderr
		res = b.rt.Execute(execCtx)
	} else {
		res = b.rt.ExecuteCapture(execCtx)
	}
	if res.Error != nil {
		return nil, res.Error
	}

	result := &Result{Mod: mod, BundleDir: modtools.BundleDir(snap, mod), ExitCode: res.ExitCode}
	if !res.ExitCode.IsSuccess() {
		if !opts.IgnoreErrors && !snap.IgnoreBuildErrors {
			return result, &BuildError{Mod: mod, ExitCode: res.ExitCode, Output: res.Output + res.ErrOutput}
		}
		b.logger.Warn("ignoring build errors", "mod", mod, "exit", res.ExitCode)
	}

	if opts.NoWorkshop {
		return result, nil
	}
	bundles, err := b.copyBundles(snap, mod)
	if err != nil {
		return result, err
	}
	result.Bundles = bundles

	if snap.UseNewFormat {
		name := mod + config.ModFileExtension
		if err := copyFile(b.fs, fspath.JoinStr(modtools.ModDir(snap, mod), name), fspath.JoinStr(result.BundleDir, name)); err != nil {
			return result, fmt.Errorf("copy %s: %w", name, err)
		}
	}
	if snap.CopySource {
		if err := b.copySource(snap, mod); err != nil {
			return result, fmt.Errorf("copy source: %w", err)
		}
	}

	b.logger.Info("built mod", "mod", mod, "bundles", len(result.Bundles))
	return result, nil
}

// copyBundles replaces the bundles in the mod's bundle folder with the
// compiler output.
func (b *Builder) copyBundles(snap *config.Snapshot, mod string) ([]string, error) {
	src := fspath.JoinStr(modtools.TempModDir(snap, mod), "bundle")
	dst := modtools.BundleDir(snap, mod)
	if err := b.fs.MkdirAll(fspath.FromSlash(dst), os.ModePerm); err != nil {
		return nil, err
	}

	old, err := bundleFiles(b.fs, dst, snap.BundleExtension)
	if err != nil {
		return nil, err
	}
	for _, name := range old {
		if err := b.fs.Remove(fspath.FromSlash(fspath.JoinStr(dst, name))); err != nil {
			return nil, err
		}
	}

	built, err := bundleFiles(b.fs, src, snap.BundleExtension)
	if err != nil {
		return nil, fmt.Errorf("read compiled bundles: %w", err)
	}
	for _, name := range built {
		if err := copyFile(b.fs, fspath.JoinStr(src, name), fspath.JoinStr(dst, name)); err != nil {
			return nil, err
		}
	}
	return built, nil
}

// copySource copies the mod sources to <bundle dir>/source, leaving out
// the bundle folders and ignored_dirs_per_mod.
func (b *Builder) copySource(snap *config.Snapshot, mod string) error {
	modDir := modtools.ModDir(snap, mod)
	dst := fspath.JoinStr(modtools.BundleDir(snap, mod), sourceDirName)
	if err := b.fs.RemoveAll(fspath.FromSlash(dst)); err != nil {
		return err
	}

	skip := modtools.SkippedModDirs(snap)
	return afero.Walk(b.fs, fspath.FromSlash(modDir), func(osPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(filepath.ToSlash(osPath), modDir.String()), "/")
		if rel == "" {
			return nil
		}
		if info.IsDir() {
			if slices.Contains(skip, rel) || (strings.HasPrefix(info.Name(), ".") && !snap.IncludeDotFiles) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") && !snap.IncludeDotFiles {
			return nil
		}
		return copyFile(b.fs, fspath.JoinStr(modDir, rel), fspath.JoinStr(dst, rel))
	})
}

// bundleFiles lists the files in dir carrying ext. An empty ext selects
// files without an extension. A missing dir has no bundles.
func bundleFiles(fs afero.Fs, dir types.FilesystemPath, ext string) ([]string, error) {
	entries, err := afero.ReadDir(fs, fspath.FromSlash(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func copyFile(fs afero.Fs, src, dst types.FilesystemPath) error {
	in, err := fs.Open(fspath.FromSlash(src))
	if err != nil {
		return err
	}
	defer in.Close()

	if err := fs.MkdirAll(fspath.FromSlash(fspath.Dir(dst)), os.ModePerm); err != nil {
		return err
	}
	out, err := fs.Create(fspath.FromSlash(dst))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
