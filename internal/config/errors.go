// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/dmbuilder/dmb/pkg/types"
)

var (
	// ErrInvalidValue is the sentinel error wrapped by InvalidValueError.
	ErrInvalidValue = errors.New("invalid config value")
	// ErrUnsupportedGame is the sentinel error wrapped by UnsupportedGameError.
	ErrUnsupportedGame = errors.New("unsupported game")
	// ErrModsDirUnspecified is returned when neither .dmbrc nor -f name a mods folder.
	ErrModsDirUnspecified = errors.New(`mods folder unspecified, use "." to point to the current folder`)
	// ErrModsDirNotFound is the sentinel error wrapped by ModsDirNotFoundError.
	ErrModsDirNotFound = errors.New("mods folder not found")
	// ErrUnknownKey is the sentinel error wrapped by UnknownKeyError.
	ErrUnknownKey = errors.New("unknown config key")
)

type (
	// InvalidValueError is returned when a .dmbrc key (or its --key override)
	// holds a value of the wrong type.
	InvalidValueError struct {
		File     string
		Key      string
		Expected Kind
		Actual   string
	}

	// UnsupportedGameError is returned when the game selector is not 1 or 2.
	UnsupportedGameError struct {
		File  string
		Value string
	}

	// ModsDirNotFoundError is returned when the resolved mods folder doesn't
	// exist or isn't a folder.
	ModsDirNotFoundError struct {
		Path types.FilesystemPath
	}

	// UnknownKeyError is returned by Snapshot.Get for a key that was never
	// resolved.
	UnknownKeyError struct {
		Key string
	}
)

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value in %s: %q must be of type %s, was %s instead", e.File, e.Key, e.Expected, e.Actual)
}

// Unwrap returns ErrInvalidValue for errors.Is() compatibility.
func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// Error implements the error interface.
func (e *UnsupportedGameError) Error() string {
	return fmt.Sprintf("game %q is not supported (must be 1 or 2), check your %s", e.Value, e.File)
}

// Unwrap returns ErrUnsupportedGame for errors.Is() compatibility.
func (e *UnsupportedGameError) Unwrap() error { return ErrUnsupportedGame }

// Error implements the error interface.
func (e *ModsDirNotFoundError) Error() string {
	return fmt.Sprintf("mods folder %q doesn't exist", e.Path)
}

// Unwrap returns ErrModsDirNotFound for errors.Is() compatibility.
func (e *ModsDirNotFoundError) Unwrap() error { return ErrModsDirNotFound }

// Error implements the error interface.
func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("config key %q is undefined", e.Key)
}

// Unwrap returns ErrUnknownKey for errors.Is() compatibility.
func (e *UnknownKeyError) Unwrap() error { return ErrUnknownKey }
