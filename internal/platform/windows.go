// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// Mods are built by Windows-only tools, so folder names are checked against
// Windows rules no matter which host runs dmb.
package platform

import (
	"errors"
	"fmt"
	"strings"
)

// invalidNameChars can't appear in a Windows file or folder name.
const invalidNameChars = `<>:"/\|?*`

var (
	// ErrInvalidFileName is the sentinel error wrapped by InvalidFileNameError.
	ErrInvalidFileName = errors.New("invalid file name")

	// windowsReservedNames are device names Windows reserves regardless of
	// extension.
	windowsReservedNames = map[string]bool{
		"CON": true, "PRN": true, "AUX": true, "NUL": true,
		"COM1": true, "COM2": true, "COM3": true, "COM4": true,
		"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
		"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
		"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
	}
)

// InvalidFileNameError explains why a name can't be used as a file name.
type InvalidFileNameError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidFileNameError) Error() string {
	return fmt.Sprintf("invalid file name %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidFileName for errors.Is() compatibility.
func (e *InvalidFileNameError) Unwrap() error { return ErrInvalidFileName }

// IsWindowsReservedName checks if a filename is a Windows reserved name.
// Only the part before the first dot counts ("nul.txt" is reserved too).
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if idx := strings.Index(upper, "."); idx != -1 {
		upper = upper[:idx]
	}
	return windowsReservedNames[upper]
}

// ValidateFileName checks that name is usable as a single file or folder
// name on Windows.
func ValidateFileName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &InvalidFileNameError{Name: name, Reason: "name is empty"}
	case strings.ContainsAny(name, invalidNameChars):
		return &InvalidFileNameError{Name: name, Reason: "name can't contain any of " + invalidNameChars}
	case strings.HasSuffix(name, ".") || strings.HasSuffix(name, " "):
		return &InvalidFileNameError{Name: name, Reason: "name can't end with a dot or a space"}
	case IsWindowsReservedName(name):
		return &InvalidFileNameError{Name: name, Reason: "name is reserved by Windows"}
	}
	for _, r := range name {
		if r < 32 {
			return &InvalidFileNameError{Name: name, Reason: "name can't contain control characters"}
		}
	}
	return nil
}
