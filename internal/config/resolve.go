// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/dmbuilder/dmb/pkg/fspath"
	"github.com/dmbuilder/dmb/pkg/types"
)

type (
	// Environment is everything outside the configuration file that
	// resolution depends on.
	Environment struct {
		// Fs is the filesystem probed and read. Defaults to the OS filesystem.
		Fs afero.Fs
		// Flags answers command line lookups. Defaults to no flags.
		Flags Lookup
		// Cwd is the current working folder.
		Cwd types.FilesystemPath
		// ExecDir is the folder holding the running executable.
		ExecDir types.FilesystemPath
		// HomeDir is the user's home folder. Empty if unknown.
		HomeDir types.FilesystemPath
		// Logger receives progress messages. Defaults to discarding them.
		Logger *log.Logger
	}

	// ResolveOptions tune a single resolution.
	ResolveOptions struct {
		// Filename is the configuration file name. Defaults to DefaultFilename.
		Filename string
		// Supplied, when non-nil, is used instead of reading a file.
		Supplied Data
	}
)

func (env Environment) withDefaults() Environment {
	if env.Fs == nil {
		env.Fs = afero.NewOsFs()
	}
	if env.Flags == nil {
		env.Flags = noLookup{}
	}
	env.Logger = orDiscard(env.Logger)
	env.Cwd = fspath.Fix(env.Cwd)
	env.ExecDir = fspath.Fix(env.ExecDir)
	env.HomeDir = fspath.Fix(env.HomeDir)
	return env
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

// Resolve locates, reads, validates and derives the configuration for one
// invocation. It doesn't modify the environment except for creating or
// resetting the configuration file.
func Resolve(ctx context.Context, env Environment, opts ResolveOptions) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env = env.withDefaults()
	logger := env.Logger
	schema := DefaultSchema()

	filename := opts.Filename
	if filename == "" {
		filename = DefaultFilename
	}

	in := searchInput{
		cwd:      env.Cwd,
		home:     env.HomeDir,
		exeDir:   env.ExecDir,
		filename: filename,
	}
	if useCwd, _ := lookupBool(env.Flags, FlagCwd); useCwd {
		in.exeDir = env.Cwd
	}
	in.rcDir, in.hasRC = nonEmpty(env.Flags.Lookup(FlagRC))
	in.folder, in.hasDir = nonEmpty(env.Flags.Lookup(FlagFolderShort, FlagFolder))
	reset, _ := lookupBool(env.Flags, FlagReset)
	prober := NewProber(env.Fs)

	snap := &Snapshot{ExeDir: in.exeDir}

	// The folder is located even for supplied data; probing reads nothing.
	c, _ := firstMatch(configDirCandidates(in), prober)
	snap.ConfigDir = c.Dir

	var raw Data
	if opts.Supplied != nil {
		raw = opts.Supplied
		snap.Supplied = true
		snap.Filename = opts.Supplied.String()
		logger.Info("using supplied configuration data", "dir", c.Dir)
	} else {
		snap.Filename = filename
		logger.Info("using configuration", "file", filename, "dir", c.Dir, "source", c.Source)

		var err error
		raw, err = readOrCreate(env.Fs, fspath.JoinStr(c.Dir, filename), reset, schema, logger)
		if err != nil {
			return nil, err
		}
	}

	cliGame, hasCLIGame, err := gameFlag(env.Flags, snap.Filename)
	if err != nil {
		return nil, err
	}

	data, err := Merge(raw, schema, reset, snap.Filename)
	if err != nil {
		return nil, err
	}
	data, snap.Overrides, snap.Warnings, err = ApplyOverrides(data, schema, env.Flags, snap.Filename, logger)
	if err != nil {
		return nil, err
	}
	snap.data = data

	if err := deriveDirs(snap, data, in, prober, logger); err != nil {
		return nil, err
	}
	if err := deriveGame(snap, data, cliGame, hasCLIGame, logger); err != nil {
		return nil, err
	}
	deriveGameKeys(snap, data, env.Cwd)
	deriveFlags(snap, data, env.Flags)
	deriveTemplate(snap, data, in, env.Flags, prober)
	return snap, nil
}

// deriveDirs sets the absolute mods and temp folders. An unspecified temp
// folder follows the mods folder, including one replaced by -f.
func deriveDirs(snap *Snapshot, data Data, in searchInput, prober Prober, logger *log.Logger) error {
	modsDir := fspath.Fix(types.FilesystemPath(str(data, KeyModsDir)))
	tempDir := fspath.Fix(types.FilesystemPath(str(data, KeyTempDir)))

	tempUnspecified := tempDir == ""
	if tempUnspecified {
		tempDir = fspath.JoinStr(modsDir, DefaultTempDirName)
	}
	if in.hasDir {
		modsDir = fspath.Fix(types.FilesystemPath(in.folder))
		if tempUnspecified {
			tempDir = fspath.JoinStr(modsDir, DefaultTempDirName)
		}
	}

	if err := modsDir.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrModsDirUnspecified, err)
	}
	snap.ModsDir = fspath.Absolutify(modsDir, in.cwd)
	snap.TempDir = fspath.Absolutify(tempDir, in.cwd)
	logger.Info("using mods folder", "path", snap.ModsDir)
	logger.Info("using temp folder", "path", snap.TempDir)

	if !prober.IsDir(snap.ModsDir) {
		return &ModsDirNotFoundError{Path: snap.ModsDir}
	}
	return nil
}

// gameFlag returns the game given with -g/--run-game or --game. "null"
// counts as not given since the override restores the default. Only --game
// is also saved as an override.
func gameFlag(flags Lookup, filename string) (int, bool, error) {
	v, ok := flags.Lookup(FlagGameShort, FlagRunGame, FlagGame)
	if !ok || v == NullToken {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false, &UnsupportedGameError{File: filename, Value: v}
	}
	return n, true, nil
}

// deriveGame picks the game from the command line or the data.
func deriveGame(snap *Snapshot, data Data, cliGame int, hasCLIGame bool, logger *log.Logger) error {
	game, _ := data[KeyGame].(int)
	if hasCLIGame {
		game = cliGame
	}
	g := Game(game)
	if !g.IsValid() {
		return &UnsupportedGameError{File: snap.Filename, Value: strconv.Itoa(game)}
	}
	snap.Game = g
	logger.Info("selected game", "game", g)
	return nil
}

func deriveGameKeys(snap *Snapshot, data Data, cwd types.FilesystemPath) {
	g := snap.Game
	snap.GameID = str(data, GameKey(KeyGameID, g))
	snap.ToolsID = str(data, GameKey(KeyToolsID, g))
	snap.BundleExtension = str(data, GameKey(KeyBundleExtension, g))
	snap.UseNewFormat = boolean(data, GameKey(KeyUseNewFormat, g))
	snap.DefaultBundleDir = "bundleV" + strconv.Itoa(int(g))
	snap.FallbackToolsDir = fspath.Absolutify(types.FilesystemPath(str(data, GameKey(KeyFallbackToolsDir, g))), cwd)
	snap.FallbackSteamAppsDir = fspath.Absolutify(types.FilesystemPath(str(data, GameKey(KeyFallbackSteamAppsDir, g))), cwd)
}

func deriveFlags(snap *Snapshot, data Data, flags Lookup) {
	snap.IncludeDotFiles = flagOrData(flags, data, KeyIncludeDotFiles, FlagDot, FlagIncludeDotFiles)
	snap.UseFallback = flagOrData(flags, data, KeyUseFallback, FlagUseFallback)
	snap.CopySource = flagOrData(flags, data, KeyCopySourceCode, FlagSource, FlagCopySourceCode)
	snap.IgnoreBuildErrors = boolean(data, KeyIgnoreBuildErrors)
	snap.IgnoredDirs = list(data, KeyIgnoredDirs)
	snap.IgnoredDirsPerMod = list(data, KeyIgnoredDirsPerMod)
}

// deriveTemplate finds the template folder and the globs selecting its files.
func deriveTemplate(snap *Snapshot, data Data, in searchInput, flags Lookup, prober Prober) {
	tpl := str(data, KeyTemplateDir)
	if v, ok := nonEmpty(flags.Lookup(FlagTemplate)); ok {
		tpl = v
	}
	c, _ := firstMatch(templateDirCandidates(in, snap.ModsDir, tpl), prober)
	snap.TemplateDir = c.Dir
	snap.TemplateSource = c.Source
	snap.ItemPreview = str(data, KeyTemplatePreview)
	snap.CoreSrc, snap.ModSrc = TemplateFileSet(c.Dir, snap.ItemPreview, list(data, KeyTemplateCoreFiles))
}

// TemplateFileSet returns the globs of the template's core files and of its
// mod files. Core files are the preview image plus corePatterns. Mod files
// are everything else in the template.
func TemplateFileSet(templateDir types.FilesystemPath, preview string, corePatterns []string) (core, mod []string) {
	core = make([]string, 0, 1+len(corePatterns))
	core = append(core, fspath.JoinStr(templateDir, preview).String())
	for _, p := range corePatterns {
		core = append(core, fspath.JoinStr(templateDir, p).String())
	}

	mod = make([]string, 0, 1+len(core))
	mod = append(mod, fspath.JoinStr(templateDir, "**").String())
	for _, c := range core {
		mod = append(mod, "!"+c)
	}
	return core, mod
}

func flagOrData(flags Lookup, data Data, key string, names ...string) bool {
	if v, ok := lookupBool(flags, names...); ok {
		return v
	}
	return boolean(data, key)
}

func nonEmpty(v string, ok bool) (string, bool) {
	return v, ok && v != ""
}

func str(data Data, key string) string {
	s, _ := data[key].(string)
	return s
}

func boolean(data Data, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func list(data Data, key string) []string {
	return toStrings(data[key])
}
