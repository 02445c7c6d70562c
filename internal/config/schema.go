// SPDX-License-Identifier: MPL-2.0

package config

import (
	"slices"
	"strconv"
)

// Schema keys. Keys ending in a game number are addressed through GameKey.
const (
	KeyModsDir              = "mods_dir"
	KeyTempDir              = "temp_dir"
	KeyGame                 = "game"
	KeyGameID               = "game_id"
	KeyToolsID              = "tools_id"
	KeyFallbackToolsDir     = "fallback_tools_dir"
	KeyFallbackSteamAppsDir = "fallback_steamapps_dir"
	KeyUseFallback          = "use_fallback"
	KeyCopySourceCode       = "copy_source_code"
	KeyBundleExtension      = "bundle_extension"
	KeyUseNewFormat         = "use_new_format"
	KeyTemplateDir          = "template_dir"
	KeyTemplatePreview      = "template_preview_image"
	KeyTemplateCoreFiles    = "template_core_files"
	KeyIncludeDotFiles      = "include_dot_files"
	KeyIgnoredDirs          = "ignored_dirs"
	KeyIgnoredDirsPerMod    = "ignored_dirs_per_mod"
	KeyIgnoreBuildErrors    = "ignore_build_errors"
)

const (
	// KindString is a plain string value.
	KindString Kind = iota + 1
	// KindInteger is a whole number.
	KindInteger
	// KindBoolean is true or false.
	KindBoolean
	// KindStringList is a list; elements are not type-checked.
	KindStringList
)

type (
	// Kind is the type tag of a schema entry.
	Kind int

	// Entry is one key of the schema with its type tag and default.
	Entry struct {
		Key     string
		Kind    Kind
		Default any
	}

	// Schema is the ordered, closed set of keys a .dmbrc may configure.
	Schema struct {
		entries []Entry
		index   map[string]int
	}
)

// String returns the name used in validation messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindStringList:
		return "list"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// GameKey returns the per-game variant of base, e.g. GameKey("game_id", 2) is
// "game_id2". Base keys never end in a digit.
func GameKey(base string, game Game) string {
	return base + strconv.Itoa(int(game))
}

// NewSchema builds a schema from entries, keeping their order.
func NewSchema(entries ...Entry) Schema {
	s := Schema{
		entries: slices.Clone(entries),
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		s.index[e.Key] = i
	}
	return s
}

// DefaultSchema returns the compiled-in schema in .dmbrc file order.
func DefaultSchema() Schema {
	return NewSchema(
		Entry{KeyModsDir, KindString, "."},
		Entry{KeyTempDir, KindString, ""},

		Entry{KeyGame, KindInteger, 2},

		Entry{GameKey(KeyGameID, Game1), KindString, "235540"},
		Entry{GameKey(KeyGameID, Game2), KindString, "552500"},

		Entry{GameKey(KeyToolsID, Game1), KindString, "718610"},
		Entry{GameKey(KeyToolsID, Game2), KindString, "866060"},

		Entry{GameKey(KeyFallbackToolsDir, Game1), KindString, "C:/Program Files (x86)/Steam/steamapps/common/Warhammer End Times Vermintide Mod Tools/"},
		Entry{GameKey(KeyFallbackToolsDir, Game2), KindString, "C:/Program Files (x86)/Steam/steamapps/common/Vermintide 2 SDK/"},

		Entry{GameKey(KeyFallbackSteamAppsDir, Game1), KindString, "C:/Program Files (x86)/Steam/steamapps/"},
		Entry{GameKey(KeyFallbackSteamAppsDir, Game2), KindString, "C:/Program Files (x86)/Steam/steamapps/"},

		Entry{KeyUseFallback, KindBoolean, false},

		Entry{KeyCopySourceCode, KindBoolean, false},

		Entry{GameKey(KeyBundleExtension, Game1), KindString, ""},
		Entry{GameKey(KeyBundleExtension, Game2), KindString, ".mod_bundle"},

		Entry{GameKey(KeyUseNewFormat, Game1), KindBoolean, false},
		Entry{GameKey(KeyUseNewFormat, Game2), KindBoolean, true},

		Entry{KeyTemplateDir, KindString, ".template-dmf"},
		Entry{KeyTemplatePreview, KindString, "item_preview.png"},
		Entry{KeyTemplateCoreFiles, KindStringList, []string{"core/**"}},

		Entry{KeyIncludeDotFiles, KindBoolean, false},

		Entry{KeyIgnoredDirs, KindStringList, []string{}},
		Entry{KeyIgnoredDirsPerMod, KindStringList, []string{}},

		Entry{KeyIgnoreBuildErrors, KindBoolean, false},
	)
}

// Entries returns the schema entries in order.
func (s Schema) Entries() []Entry {
	return slices.Clone(s.entries)
}

// Keys returns the schema keys in order.
func (s Schema) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Key
	}
	return keys
}

// Lookup returns the entry for key.
func (s Schema) Lookup(key string) (Entry, bool) {
	i, ok := s.index[key]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Defaults returns a fresh data set holding every default value.
func (s Schema) Defaults() Data {
	d := make(Data, len(s.entries))
	for _, e := range s.entries {
		d[e.Key] = e.DefaultValue()
	}
	return d
}

// DefaultValue returns the entry's default. List defaults are copied so
// callers can't alter the schema through the result.
func (e Entry) DefaultValue() any {
	if l, ok := e.Default.([]string); ok {
		return append([]string{}, l...)
	}
	return e.Default
}
