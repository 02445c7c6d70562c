// SPDX-License-Identifier: MPL-2.0

// Package uploader publishes built mods through the Workshop uploader that
// ships with the mod tools.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/internal/modtools"
	"github.com/dmbuilder/dmb/internal/runtime"
	"github.com/dmbuilder/dmb/pkg/fspath"
	"github.com/dmbuilder/dmb/pkg/types"
)

// ErrUploadFailed is the sentinel error wrapped by UploadError.
var ErrUploadFailed = errors.New("upload failed")

var publishedIDRe = regexp.MustCompile(`(?i)published\s*(?:file)?\s*_?id\D*(\d+)`)

type (
	// Options tune a single upload.
	Options struct {
		// ToolsDir is the mod tools folder holding the uploader.
		ToolsDir types.FilesystemPath
		// ChangeNote is shown on the Workshop page. Optional.
		ChangeNote string
	}

	// Result describes a finished upload.
	Result struct {
		Mod         string
		PublishedID string
	}

	// UploadError is returned when the uploader exits with a failure.
	UploadError struct {
		Mod      string
		ExitCode types.ExitCode
		Output   string
	}

	// Uploader uploads mods.
	Uploader struct {
		fs     afero.Fs
		rt     runtime.Runtime
		logger *log.Logger
	}
)

// Error implements the error interface.
func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %q: uploader exited with code %s", e.Mod, e.ExitCode)
}

// Unwrap returns ErrUploadFailed for errors.Is() compatibility.
func (e *UploadError) Unwrap() error { return ErrUploadFailed }

// New returns an Uploader.
func New(fs afero.Fs, rt runtime.Runtime, logger *log.Logger) *Uploader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Uploader{fs: fs, rt: rt, logger: logger}
}

// UploaderArgs returns the uploader arguments publishing the item cfg.
func UploaderArgs(cfgPath types.FilesystemPath, changeNote string) []string {
	args := []string{"-c", fspath.FromSlash(cfgPath)}
	if changeNote != "" {
		args = append(args, "-n", changeNote)
	}
	return args
}

// Upload publishes mod. A Workshop id reported by the uploader is stored in
// the mod's item cfg when it has none yet.
func (u *Uploader) Upload(ctx context.Context, snap *config.Snapshot, mod string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfgPath := modtools.ItemCfgPath(snap, mod)
	cfg, err := modtools.ReadItemCfg(u.fs, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("read item cfg: %w", err)
	}

	dir := modtools.UploaderDir(opts.ToolsDir)
	appID := fspath.JoinStr(dir, config.UploaderGameConfig)
	if err := afero.WriteFile(u.fs, fspath.FromSlash(appID), []byte(snap.GameID), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", config.UploaderGameConfig, err)
	}

	u.logger.Info("uploading mod", "mod", mod, "cfg", cfgPath)
	res := u.rt.ExecuteCapture(&runtime.ExecutionContext{
		Context: ctx,
		Path:    fspath.FromSlash(fspath.JoinStr(dir, config.UploaderExe)),
		Args:    UploaderArgs(cfgPath, opts.ChangeNote),
		WorkDir: fspath.FromSlash(dir),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	output := res.Output + res.ErrOutput
	if !res.ExitCode.IsSuccess() {
		return nil, &UploadError{Mod: mod, ExitCode: res.ExitCode, Output: output}
	}

	result := &Result{Mod: mod, PublishedID: cfg.PublishedID}
	if m := publishedIDRe.FindStringSubmatch(output); m != nil && cfg.PublishedID == "" {
		cfg.PublishedID = m[1]
		result.PublishedID = m[1]
		if err := modtools.WriteItemCfg(u.fs, cfgPath, cfg); err != nil {
			return result, fmt.Errorf("update item cfg: %w", err)
		}
	}
	u.logger.Info("uploaded mod", "mod", mod, "id", result.PublishedID)
	return result, nil
}
