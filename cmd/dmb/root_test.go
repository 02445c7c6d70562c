// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/dmbuilder/dmb/internal/config"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2025-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2025-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got, want := getVersionString(), "dev (built from source)"; got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestAddPersistentFlags(t *testing.T) {
	t.Parallel()

	flags := pflag.NewFlagSet("dmb", pflag.ContinueOnError)
	addPersistentFlags(flags)

	for _, key := range config.DefaultSchema().Keys() {
		f := flags.Lookup(key)
		if f == nil {
			t.Errorf("no flag for key %q", key)
			continue
		}
		if key == config.KeyGame {
			if f.Hidden || f.Shorthand != "" {
				t.Errorf("--game should be visible and have no shorthand")
			}
			continue
		}
		if !f.Hidden {
			t.Errorf("--%s should be hidden", key)
		}
	}

	if got := flags.Lookup(config.KeyUseFallback).NoOptDefVal; got != "true" {
		t.Errorf("--use_fallback NoOptDefVal = %q, want true", got)
	}
	if got := flags.Lookup(config.KeyModsDir).NoOptDefVal; got != "" {
		t.Errorf("--mods_dir NoOptDefVal = %q, want empty", got)
	}
}

func TestGameShorthandIsRunOnly(t *testing.T) {
	t.Parallel()

	flags := pflag.NewFlagSet("dmb", pflag.ContinueOnError)
	addPersistentFlags(flags)
	if err := flags.Parse([]string{"-g", "1"}); err != nil {
		t.Fatal(err)
	}

	lookup := config.NewFlagLookup(flags)
	if v, ok := lookup.Lookup(config.FlagGameShort, config.FlagRunGame); !ok || v != "1" {
		t.Errorf("Lookup(g, run-game) = %q, %v", v, ok)
	}
	if _, ok := lookup.Lookup(config.KeyGame); ok {
		t.Error("-g reached the game override")
	}
}

func TestPersistentFlagsReachLookup(t *testing.T) {
	t.Parallel()

	flags := pflag.NewFlagSet("dmb", pflag.ContinueOnError)
	addPersistentFlags(flags)
	if err := flags.Parse([]string{"-f", "mods", "--use_fallback", "--dot", "--game=1"}); err != nil {
		t.Fatal(err)
	}

	lookup := config.NewFlagLookup(flags)
	tests := []struct {
		names []string
		want  string
		found bool
	}{
		{[]string{config.FlagFolderShort, config.FlagFolder}, "mods", true},
		{[]string{config.KeyUseFallback}, "true", true},
		{[]string{config.FlagDot, config.FlagIncludeDotFiles}, "true", true},
		{[]string{config.FlagGame}, "1", true},
		{[]string{config.FlagGameShort, config.FlagRunGame}, "", false},
		{[]string{config.FlagReset}, "", false},
		{[]string{config.KeyModsDir}, "", false},
	}
	for _, tt := range tests {
		got, found := lookup.Lookup(tt.names...)
		if got != tt.want || found != tt.found {
			t.Errorf("Lookup(%v) = %q, %v; want %q, %v", tt.names, got, found, tt.want, tt.found)
		}
	}
}
