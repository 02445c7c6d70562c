// SPDX-License-Identifier: MPL-2.0

package config

import "github.com/spf13/pflag"

// Flag names consulted by the resolution pipeline.
const (
	FlagFolder          = "folder"
	FlagFolderShort     = "f"
	FlagGame            = "game"
	FlagRunGame         = "run-game"
	FlagGameShort       = "g"
	FlagRC              = "rc"
	FlagReset           = "reset"
	FlagCwd             = "cwd"
	FlagDot             = "dot"
	FlagIncludeDotFiles = "include-dot-files"
	FlagUseFallback     = "use-fallback"
	FlagSource          = "source"
	FlagCopySourceCode  = "copy-source-code"
	FlagTemplate        = "template"

	// NullToken given as a --<key> value restores the key's default.
	NullToken = "null"
)

type (
	// Lookup answers whether any of the given flag names was supplied on the
	// command line and with what value. The first present name wins.
	Lookup interface {
		Lookup(names ...string) (string, bool)
	}

	// FlagLookup is a Lookup over a parsed pflag set. Only flags the user
	// actually set are present; defaults don't count.
	FlagLookup struct {
		flags *pflag.FlagSet
	}

	// MapLookup is a Lookup over a fixed map of flag name to value.
	MapLookup map[string]string
)

// NewFlagLookup returns a Lookup over flags. A nil set has no flags.
func NewFlagLookup(flags *pflag.FlagSet) FlagLookup {
	return FlagLookup{flags: flags}
}

// Lookup implements Lookup. Single-letter names are matched as shorthands.
func (l FlagLookup) Lookup(names ...string) (string, bool) {
	if l.flags == nil {
		return "", false
	}
	for _, name := range names {
		var f *pflag.Flag
		if len(name) == 1 {
			f = l.flags.ShorthandLookup(name)
		} else {
			f = l.flags.Lookup(name)
		}
		if f != nil && f.Changed {
			return f.Value.String(), true
		}
	}
	return "", false
}

// Lookup implements Lookup.
func (m MapLookup) Lookup(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	return "", false
}

// truthy converts a flag value to a boolean: only "false" is false.
func truthy(v string) bool {
	return v != "false"
}

// lookupBool returns the boolean value of the first present name.
func lookupBool(l Lookup, names ...string) (value, present bool) {
	v, ok := l.Lookup(names...)
	if !ok {
		return false, false
	}
	return truthy(v), true
}

// noLookup has no flags at all.
type noLookup struct{}

func (noLookup) Lookup(...string) (string, bool) { return "", false }
