// SPDX-License-Identifier: MPL-2.0

// Package fspath provides the path helpers used by configuration resolution.
// Paths are carried in slash form (types.FilesystemPath) so that glob patterns
// built from them stay valid on every platform; FromSlash converts back to the
// OS form right before a path is handed to an external executable.
package fspath

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/dmbuilder/dmb/pkg/types"
)

// Fix normalizes p: backslashes become forward slashes and the result is
// cleaned. The empty path stays empty so callers can still tell that a value
// was never specified.
func Fix(p types.FilesystemPath) types.FilesystemPath {
	if p == "" {
		return ""
	}
	return types.FilesystemPath(path.Clean(strings.ReplaceAll(string(p), `\`, "/")))
}

// Combine joins path elements after normalizing each one. Empty elements are
// skipped.
func Combine(elem ...types.FilesystemPath) types.FilesystemPath {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e == "" {
			continue
		}
		parts = append(parts, string(Fix(e)))
	}
	if len(parts) == 0 {
		return ""
	}
	return types.FilesystemPath(path.Join(parts...))
}

// JoinStr joins a typed base path with raw string segments such as file names
// or glob patterns ("core/**").
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]types.FilesystemPath, 0, 1+len(elem))
	parts = append(parts, base)
	for _, e := range elem {
		parts = append(parts, types.FilesystemPath(e))
	}
	return Combine(parts...)
}

// IsAbs reports whether p is absolute. Drive-letter paths ("C:/...") count as
// absolute on every host because the tool's default folders are written that way.
func IsAbs(p types.FilesystemPath) bool {
	s := strings.ReplaceAll(string(p), `\`, "/")
	if strings.HasPrefix(s, "/") {
		return true
	}
	if len(s) >= 3 && s[1] == ':' && s[2] == '/' && isLetter(s[0]) {
		return true
	}
	return filepath.IsAbs(string(p))
}

// Absolutify returns p unchanged (normalized) when it is absolute, otherwise
// p resolved against base.
func Absolutify(p, base types.FilesystemPath) types.FilesystemPath {
	p = Fix(p)
	if IsAbs(p) {
		return p
	}
	return Combine(base, p)
}

// Dir returns all but the last element of p.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(path.Dir(string(Fix(p))))
}

// Base returns the last element of p.
func Base(p types.FilesystemPath) string {
	return path.Base(string(Fix(p)))
}

// FromSlash converts p to the OS-specific separator form.
func FromSlash(p types.FilesystemPath) string {
	return filepath.FromSlash(string(p))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
