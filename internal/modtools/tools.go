// SPDX-License-Identifier: MPL-2.0

package modtools

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/pkg/fspath"
	"github.com/dmbuilder/dmb/pkg/types"
)

// ErrToolsNotFound is returned when the mod tools folder has no compiler.
var ErrToolsNotFound = errors.New("mod tools not found")

var installDirRe = regexp.MustCompile(`(?m)^\s*"installdir"\s+"([^"]+)"`)

// ToolsNotFoundError names the folder that was expected to hold the mod
// tools.
type ToolsNotFoundError struct {
	Dir types.FilesystemPath
}

// Error implements the error interface.
func (e *ToolsNotFoundError) Error() string {
	return fmt.Sprintf("mod tools not found in %q", e.Dir)
}

// Unwrap returns ErrToolsNotFound for errors.Is() compatibility.
func (e *ToolsNotFoundError) Unwrap() error { return ErrToolsNotFound }

// ToolsDir finds the installed mod tools of the selected game. Unless
// use_fallback is set it asks Steam's app manifest first and falls back to
// the configured folder.
func ToolsDir(fs afero.Fs, snap *config.Snapshot, logger *log.Logger) (types.FilesystemPath, error) {
	dir := snap.FallbackToolsDir
	if !snap.UseFallback {
		if found, err := steamToolsDir(fs, snap); err == nil {
			dir = found
		} else if logger != nil {
			logger.Warn("mod tools not found through Steam, using fallback", "err", err, "dir", dir)
		}
	}

	if !isFile(fs, StingrayPath(dir)) {
		return "", &ToolsNotFoundError{Dir: dir}
	}
	if logger != nil {
		logger.Info("using mod tools", "dir", dir)
	}
	return dir, nil
}

// StingrayPath returns the compiler executable inside toolsDir.
func StingrayPath(toolsDir types.FilesystemPath) types.FilesystemPath {
	return fspath.JoinStr(toolsDir, config.StingrayDir, config.StingrayExe)
}

// UploaderDir returns the Workshop uploader folder inside toolsDir.
func UploaderDir(toolsDir types.FilesystemPath) types.FilesystemPath {
	return fspath.JoinStr(toolsDir, config.UploaderDir)
}

// steamToolsDir reads the tools' install folder from Steam's app manifest.
func steamToolsDir(fs afero.Fs, snap *config.Snapshot) (types.FilesystemPath, error) {
	manifest := fspath.JoinStr(snap.FallbackSteamAppsDir, "appmanifest_"+snap.ToolsID+".acf")
	b, err := afero.ReadFile(fs, fspath.FromSlash(manifest))
	if err != nil {
		return "", err
	}
	m := installDirRe.FindSubmatch(b)
	if m == nil {
		return "", fmt.Errorf("%s has no installdir", manifest)
	}
	dir := fspath.JoinStr(snap.FallbackSteamAppsDir, "common", string(m[1]))
	if !isFile(fs, StingrayPath(dir)) {
		return "", &ToolsNotFoundError{Dir: dir}
	}
	return dir, nil
}
