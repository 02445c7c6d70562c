// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/dmbuilder/dmb/internal/testutil"
	"github.com/dmbuilder/dmb/pkg/types"
)

func testEnv(t *testing.T, flags MapLookup) Environment {
	t.Helper()
	return Environment{
		Fs:      testutil.MemFs(t, "/work", "/home/user", "/opt/dmb"),
		Flags:   flags,
		Cwd:     "/work",
		ExecDir: "/opt/dmb",
		HomeDir: "/home/user",
	}
}

func mustResolve(t *testing.T, env Environment, opts ResolveOptions) *Snapshot {
	t.Helper()
	snap, err := Resolve(context.Background(), env, opts)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return snap
}

func TestResolveCreatesDefaultsInExeDir(t *testing.T) {
	t.Parallel()

	env := testEnv(t, nil)
	snap := mustResolve(t, env, ResolveOptions{})

	if snap.ConfigDir != "/opt/dmb" || snap.Filename != DefaultFilename {
		t.Errorf("config at %s/%s, want /opt/dmb/.dmbrc", snap.ConfigDir, snap.Filename)
	}
	content := testutil.MustReadFile(t, env.Fs, "/opt/dmb/.dmbrc")
	if !strings.HasPrefix(content, "{\n  \"mods_dir\": \".\",\n  \"temp_dir\": \"\",") {
		t.Errorf("unexpected default file:\n%s", content)
	}

	if snap.ModsDir != "/work" || snap.TempDir != "/work/.temp" {
		t.Errorf("mods %s, temp %s", snap.ModsDir, snap.TempDir)
	}
	if snap.Game != Game2 || snap.DefaultBundleDir != "bundleV2" {
		t.Errorf("game %d, bundle dir %s", snap.Game, snap.DefaultBundleDir)
	}
	if snap.TemplateDir != "/opt/dmb/.template-dmf" || snap.TemplateSource != SourceExeDir {
		t.Errorf("template %s from %s", snap.TemplateDir, snap.TemplateSource)
	}
}

func TestResolvePerGameKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		game      string
		gameID    string
		toolsID   string
		extension string
		newFormat bool
		tools     types.FilesystemPath
	}{
		{"1", "235540", "718610", "", false, "C:/Program Files (x86)/Steam/steamapps/common/Warhammer End Times Vermintide Mod Tools"},
		{"2", "552500", "866060", ".mod_bundle", true, "C:/Program Files (x86)/Steam/steamapps/common/Vermintide 2 SDK"},
	}

	for _, tt := range tests {
		t.Run("game "+tt.game, func(t *testing.T) {
			t.Parallel()

			snap := mustResolve(t, testEnv(t, MapLookup{FlagGameShort: tt.game}), ResolveOptions{})
			if snap.GameID != tt.gameID || snap.ToolsID != tt.toolsID {
				t.Errorf("ids = %s/%s, want %s/%s", snap.GameID, snap.ToolsID, tt.gameID, tt.toolsID)
			}
			if snap.BundleExtension != tt.extension || snap.UseNewFormat != tt.newFormat {
				t.Errorf("extension %q, new format %v", snap.BundleExtension, snap.UseNewFormat)
			}
			if snap.FallbackToolsDir != tt.tools {
				t.Errorf("fallback tools dir = %s, want %s", snap.FallbackToolsDir, tt.tools)
			}
			if snap.FallbackSteamAppsDir != "C:/Program Files (x86)/Steam/steamapps" {
				t.Errorf("fallback steamapps dir = %s", snap.FallbackSteamAppsDir)
			}
			if snap.DefaultBundleDir != "bundleV"+tt.game {
				t.Errorf("default bundle dir = %s", snap.DefaultBundleDir)
			}
		})
	}
}

func TestResolveUnsupportedGame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags MapLookup
		file  string
	}{
		{name: "cli out of range", flags: MapLookup{FlagGameShort: "3"}},
		{name: "cli not a number", flags: MapLookup{FlagGame: "two"}},
		{name: "file out of range", file: `{"game": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := testEnv(t, tt.flags)
			if tt.file != "" {
				testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", tt.file)
			}
			_, err := Resolve(context.Background(), env, ResolveOptions{})
			if !errors.Is(err, ErrUnsupportedGame) {
				t.Fatalf("Resolve() error = %v, want ErrUnsupportedGame", err)
			}
			if !strings.Contains(err.Error(), DefaultFilename) {
				t.Errorf("error doesn't name the config file: %v", err)
			}
		})
	}
}

func TestResolveInvalidFileValue(t *testing.T) {
	t.Parallel()

	env := testEnv(t, nil)
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"game": "2"}`)

	_, err := Resolve(context.Background(), env, ResolveOptions{})
	want := `invalid value in .dmbrc: "game" must be of type integer, was string instead`
	if err == nil || err.Error() != want {
		t.Errorf("Resolve() error = %v, want %q", err, want)
	}
}

func TestResolveResetIgnoresInvalidFile(t *testing.T) {
	t.Parallel()

	env := testEnv(t, MapLookup{FlagReset: "true"})
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"game": "2", "mods_dir": "nowhere"}`)

	snap := mustResolve(t, env, ResolveOptions{})
	if snap.ModsDir != "/work" {
		t.Errorf("mods dir = %s, want defaults after reset", snap.ModsDir)
	}
	if !reflect.DeepEqual(snap.Data(), DefaultSchema().Defaults()) {
		t.Errorf("data after reset = %v", snap.Data())
	}
	content := testutil.MustReadFile(t, env.Fs, "/work/.dmbrc")
	if strings.Contains(content, "nowhere") {
		t.Errorf("reset didn't rewrite the file:\n%s", content)
	}
}

func TestResolveTempDirFollowsFolderFlag(t *testing.T) {
	t.Parallel()

	env := testEnv(t, MapLookup{FlagFolder: "/mods"})
	testutil.MustMkdirAll(t, env.Fs, "/mods")
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"mods_dir": "/other"}`)

	snap := mustResolve(t, env, ResolveOptions{})
	if snap.ModsDir != "/mods" || snap.TempDir != "/mods/.temp" {
		t.Errorf("mods %s, temp %s, want /mods and /mods/.temp", snap.ModsDir, snap.TempDir)
	}
}

func TestResolveExplicitTempDirKept(t *testing.T) {
	t.Parallel()

	env := testEnv(t, MapLookup{FlagFolderShort: "mods"})
	testutil.MustMkdirAll(t, env.Fs, "/work/mods")
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"temp_dir": "build/tmp"}`)

	snap := mustResolve(t, env, ResolveOptions{})
	if snap.ModsDir != "/work/mods" || snap.TempDir != "/work/build/tmp" {
		t.Errorf("mods %s, temp %s", snap.ModsDir, snap.TempDir)
	}
}

func TestResolveFolderFlagPicksItsConfig(t *testing.T) {
	t.Parallel()

	env := testEnv(t, MapLookup{FlagFolderShort: "/mods"})
	testutil.MustWriteFile(t, env.Fs, "/mods/.dmbrc", `{"game": 1}`)
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"game": 2}`)

	snap := mustResolve(t, env, ResolveOptions{})
	if snap.ConfigDir != "/mods" || snap.Game != Game1 {
		t.Errorf("config dir %s, game %d", snap.ConfigDir, snap.Game)
	}
}

func TestResolveCwdFlagReplacesExeDir(t *testing.T) {
	t.Parallel()

	snap := mustResolve(t, testEnv(t, MapLookup{FlagCwd: "true"}), ResolveOptions{})
	if snap.ExeDir != "/work" || snap.ConfigDir != "/work" {
		t.Errorf("exe dir %s, config dir %s, want /work", snap.ExeDir, snap.ConfigDir)
	}
}

func TestResolveModsDirErrors(t *testing.T) {
	t.Parallel()

	env := testEnv(t, nil)
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"mods_dir": ""}`)
	if _, err := Resolve(context.Background(), env, ResolveOptions{}); !errors.Is(err, ErrModsDirUnspecified) {
		t.Errorf("empty mods_dir: error = %v", err)
	}

	env = testEnv(t, nil)
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"mods_dir": "   "}`)
	_, err := Resolve(context.Background(), env, ResolveOptions{})
	if !errors.Is(err, ErrModsDirUnspecified) || !errors.Is(err, types.ErrInvalidFilesystemPath) {
		t.Errorf("blank mods_dir: error = %v", err)
	}

	env = testEnv(t, MapLookup{FlagFolder: "missing"})
	_, err = Resolve(context.Background(), env, ResolveOptions{})
	var nf *ModsDirNotFoundError
	if !errors.As(err, &nf) || nf.Path != "/work/missing" {
		t.Errorf("missing mods dir: error = %v", err)
	}
}

func TestResolveSuppliedData(t *testing.T) {
	t.Parallel()

	env := testEnv(t, nil)
	supplied := Data{KeyGame: 1, KeyIgnoredDirs: []string{"x"}}
	snap := mustResolve(t, env, ResolveOptions{Supplied: supplied})

	if !snap.Supplied || snap.Filename != "[config data]" || snap.ConfigDir != "/opt/dmb" {
		t.Errorf("supplied snapshot identifies as %q in %q", snap.Filename, snap.ConfigDir)
	}
	if snap.Game != Game1 || !slices.Equal(snap.IgnoredDirs, []string{"x"}) {
		t.Errorf("game %d, ignored %v", snap.Game, snap.IgnoredDirs)
	}
	if ok, _ := afero.Exists(env.Fs, "/opt/dmb/.dmbrc"); ok {
		t.Error("supplied data created a config file")
	}
	if err := Save(env.Fs, snap); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if ok, _ := afero.Exists(env.Fs, "/opt/dmb/.dmbrc"); ok {
		t.Error("Save() wrote supplied data")
	}
}

func TestResolveBooleanFlags(t *testing.T) {
	t.Parallel()

	env := testEnv(t, MapLookup{FlagDot: "true", FlagUseFallback: "false", FlagCopySourceCode: "yes"})
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"use_fallback": true}`)

	snap := mustResolve(t, env, ResolveOptions{})
	if !snap.IncludeDotFiles || snap.UseFallback || !snap.CopySource {
		t.Errorf("dot %v, fallback %v, source %v", snap.IncludeDotFiles, snap.UseFallback, snap.CopySource)
	}
}

func TestResolveOverrides(t *testing.T) {
	t.Parallel()

	env := testEnv(t, MapLookup{KeyTemplatePreview: "preview.jpg", KeyIgnoredDirs: "a", KeyGame: "null"})
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"game": 1}`)

	snap := mustResolve(t, env, ResolveOptions{})
	if snap.ItemPreview != "preview.jpg" {
		t.Errorf("item preview = %q", snap.ItemPreview)
	}
	if snap.Game != Game2 {
		t.Errorf("--game=null should restore the default, got %d", snap.Game)
	}
	if len(snap.Overrides) != 2 || len(snap.Warnings) != 1 {
		t.Errorf("overrides %v, warnings %v", snap.Overrides, snap.Warnings)
	}
}

func TestResolveTemplateFileSet(t *testing.T) {
	t.Parallel()

	env := testEnv(t, MapLookup{FlagTemplate: ".tpl"})
	testutil.MustMkdirAll(t, env.Fs, "/work/.tpl")
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"template_core_files": ["core/**", "LICENSE"]}`)

	snap := mustResolve(t, env, ResolveOptions{})
	wantCore := []string{"/work/.tpl/item_preview.png", "/work/.tpl/core/**", "/work/.tpl/LICENSE"}
	wantMod := []string{"/work/.tpl/**", "!/work/.tpl/item_preview.png", "!/work/.tpl/core/**", "!/work/.tpl/LICENSE"}
	if !slices.Equal(snap.CoreSrc, wantCore) {
		t.Errorf("core = %v, want %v", snap.CoreSrc, wantCore)
	}
	if !slices.Equal(snap.ModSrc, wantMod) {
		t.Errorf("mod = %v, want %v", snap.ModSrc, wantMod)
	}
}

func TestResolveCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Resolve(ctx, testEnv(t, nil), ResolveOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want context.Canceled", err)
	}
}

func TestSnapshotGet(t *testing.T) {
	t.Parallel()

	snap := mustResolve(t, testEnv(t, nil), ResolveOptions{})
	tests := map[string]any{
		"modsDir":          types.FilesystemPath("/work"),
		"gameNumber":       Game2,
		"gameId":           "552500",
		"templateName":     "%%name",
		"modFileExtension": ".mod",
		"stingrayExe":      "stingray_win64_dev_x64.exe",
		"uploaderDir":      "ugc_uploader/",
	}
	for key, want := range tests {
		got, err := snap.Get(key)
		if err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Get(%q) = %#v, want %#v", key, got, want)
		}
	}

	_, err := snap.Get("nope")
	if !errors.Is(err, ErrUnknownKey) || err.Error() != `config key "nope" is undefined` {
		t.Errorf("Get(nope) error = %v", err)
	}
}

func TestSaveWritesOverrides(t *testing.T) {
	t.Parallel()

	env := testEnv(t, MapLookup{KeyGame: "1"})
	snap := mustResolve(t, env, ResolveOptions{})
	if err := Save(env.Fs, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	content := testutil.MustReadFile(t, env.Fs, "/opt/dmb/.dmbrc")
	if !strings.Contains(content, `"game": 1,`) {
		t.Errorf("override not saved:\n%s", content)
	}
}

func TestResolveKeepsUnknownKeyCase(t *testing.T) {
	t.Parallel()

	env := testEnv(t, nil)
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"GAME": 7}`)
	snap := mustResolve(t, env, ResolveOptions{})

	if snap.Game != Game2 {
		t.Errorf("game = %d, want the default %d", snap.Game, Game2)
	}
	if v := snap.Data()["GAME"]; v != float64(7) {
		t.Errorf("GAME = %#v, want it carried along untouched", v)
	}
}

func TestSaveKeepsUnknownKeysVerbatim(t *testing.T) {
	t.Parallel()

	env := testEnv(t, MapLookup{KeyGame: "1"})
	testutil.MustWriteFile(t, env.Fs, "/work/.dmbrc", `{"my.note": "x", "Custom": 1}`)
	snap := mustResolve(t, env, ResolveOptions{})
	if err := Save(env.Fs, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	content := testutil.MustReadFile(t, env.Fs, "/work/.dmbrc")
	for _, want := range []string{`"Custom": 1`, `"my.note": "x"`} {
		if !strings.Contains(content, want) {
			t.Errorf("saved file is missing %s:\n%s", want, content)
		}
	}
	for _, unwanted := range []string{`"custom"`, `"my": {`} {
		if strings.Contains(content, unwanted) {
			t.Errorf("saved file has rewritten key %s:\n%s", unwanted, content)
		}
	}
}

func TestResolveGameShorthandNotSaved(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		flags     MapLookup
		overrides int
	}{
		{"shorthand", MapLookup{FlagGameShort: "1"}, 0},
		{"run game", MapLookup{FlagRunGame: "1"}, 0},
		{"game key", MapLookup{FlagGame: "1"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snap := mustResolve(t, testEnv(t, tt.flags), ResolveOptions{})
			if snap.Game != Game1 {
				t.Errorf("game = %d, want %d", snap.Game, Game1)
			}
			if len(snap.Overrides) != tt.overrides {
				t.Errorf("overrides = %v, want %d", snap.Overrides, tt.overrides)
			}
		})
	}
}
