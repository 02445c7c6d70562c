// SPDX-License-Identifier: MPL-2.0

package modtools

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/internal/platform"
	"github.com/dmbuilder/dmb/pkg/fspath"
	"github.com/dmbuilder/dmb/pkg/types"
)

var (
	// ErrInvalidModName is returned for names that can't be used as a mod folder.
	ErrInvalidModName = errors.New("invalid mod name")
	// ErrModExists is returned when creating a mod whose folder already exists.
	ErrModExists = errors.New("mod folder already exists")
	// ErrModNotFound is returned when a mod folder doesn't exist.
	ErrModNotFound = errors.New("mod folder not found")
	// ErrItemCfgNotFound is returned when a mod has no item cfg for the game.
	ErrItemCfgNotFound = errors.New("item cfg not found")
)

// ModError ties a failure to the mod it concerns.
type ModError struct {
	Mod string
	Dir types.FilesystemPath
	Err error
}

// Error implements the error interface.
func (e *ModError) Error() string {
	return fmt.Sprintf("mod %q (%s): %v", e.Mod, e.Dir, e.Err)
}

// Unwrap returns the underlying error.
func (e *ModError) Unwrap() error { return e.Err }

// ModDir returns the folder of the named mod.
func ModDir(snap *config.Snapshot, name string) types.FilesystemPath {
	return fspath.JoinStr(snap.ModsDir, name)
}

// TempModDir returns the mod's folder under the temp folder.
func TempModDir(snap *config.Snapshot, name string) types.FilesystemPath {
	return fspath.JoinStr(snap.TempDir, name)
}

// BundleDir returns the folder compiled bundles are copied to.
func BundleDir(snap *config.Snapshot, name string) types.FilesystemPath {
	return fspath.JoinStr(ModDir(snap, name), snap.DefaultBundleDir)
}

// SkippedModDirs lists the folders inside a mod, relative to it, that hold
// build output or are ignored_dirs_per_mod. They aren't copied as source
// code or watched for changes.
func SkippedModDirs(snap *config.Snapshot) []string {
	dirs := []string{snap.DefaultBundleDir}
	for _, d := range append([]string{"bundleV1", "bundleV2"}, snap.IgnoredDirsPerMod...) {
		if !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// ValidName checks that name can be used as a mod folder.
func ValidName(name string) error {
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q can't start with a dot", ErrInvalidModName, name)
	}
	if err := platform.ValidateFileName(name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidModName, err)
	}
	return nil
}

// CheckNew reports whether a mod called name may be created.
func CheckNew(fs afero.Fs, snap *config.Snapshot, name string) error {
	dir := ModDir(snap, name)
	if err := ValidName(name); err != nil {
		return &ModError{Mod: name, Dir: dir, Err: err}
	}
	if isDir(fs, dir) {
		return &ModError{Mod: name, Dir: dir, Err: ErrModExists}
	}
	return nil
}

// CheckExisting reports whether the named mod can be built or uploaded.
// With needCfg the mod must also have an item cfg for the selected game.
func CheckExisting(fs afero.Fs, snap *config.Snapshot, name string, needCfg bool) error {
	dir := ModDir(snap, name)
	if !isDir(fs, dir) {
		return &ModError{Mod: name, Dir: dir, Err: ErrModNotFound}
	}
	if needCfg {
		cfg := ItemCfgPath(snap, name)
		if ok, _ := afero.Exists(fs, fspath.FromSlash(cfg)); !ok {
			return &ModError{Mod: name, Dir: dir, Err: fmt.Errorf("%w: %s", ErrItemCfgNotFound, cfg)}
		}
	}
	return nil
}

// ListMods returns the names of the mod folders in the mods folder, sorted.
// Dot folders, ignored dirs and the temp and template folders are left out.
func ListMods(fs afero.Fs, snap *config.Snapshot) ([]string, error) {
	entries, err := afero.ReadDir(fs, fspath.FromSlash(snap.ModsDir))
	if err != nil {
		return nil, err
	}

	var mods []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || skipFolder(snap, name) {
			continue
		}
		mods = append(mods, name)
	}
	slices.Sort(mods)
	return mods, nil
}

func skipFolder(snap *config.Snapshot, name string) bool {
	if strings.HasPrefix(name, ".") && !snap.IncludeDotFiles {
		return true
	}
	if slices.Contains(snap.IgnoredDirs, name) {
		return true
	}
	dir := ModDir(snap, name)
	return dir == snap.TempDir || dir == snap.TemplateDir
}

func isDir(fs afero.Fs, p types.FilesystemPath) bool {
	fi, err := fs.Stat(fspath.FromSlash(p))
	return err == nil && fi.IsDir()
}

func isFile(fs afero.Fs, p types.FilesystemPath) bool {
	fi, err := fs.Stat(fspath.FromSlash(p))
	return err == nil && fi.Mode().IsRegular()
}
