// SPDX-License-Identifier: MPL-2.0

package config

import (
	"slices"

	"github.com/dmbuilder/dmb/pkg/types"
)

// Fixed names the tasks rely on.
const (
	TemplateNameToken        = "%%name"
	TemplateTitleToken       = "%%title"
	TemplateDescriptionToken = "%%description"

	ModFileExtension   = ".mod"
	UploaderDir        = "ugc_uploader/"
	UploaderExe        = "ugc_tool.exe"
	UploaderGameConfig = "steam_appid.txt"
	StingrayDir        = "bin/"
	StingrayExe        = "stingray_win64_dev_x64.exe"
)

// Snapshot is the fully resolved configuration of one invocation. It is
// built once by Resolve and only read afterwards.
type Snapshot struct {
	// ConfigDir is the folder holding the configuration file. Supplied
	// data still gets the folder a file would have been read from.
	ConfigDir types.FilesystemPath
	// Filename is the configuration file name, or "[config data]".
	Filename string
	// Supplied reports whether the data was handed to Resolve directly.
	Supplied bool
	ExeDir   types.FilesystemPath

	ModsDir types.FilesystemPath
	TempDir types.FilesystemPath

	Game                 Game
	GameID               string
	ToolsID              string
	FallbackToolsDir     types.FilesystemPath
	FallbackSteamAppsDir types.FilesystemPath

	IncludeDotFiles   bool
	IgnoredDirs       []string
	IgnoredDirsPerMod []string

	TemplateDir    types.FilesystemPath
	TemplateSource Source
	ItemPreview    string
	// CoreSrc are the template globs copied verbatim.
	CoreSrc []string
	// ModSrc are the template globs that get placeholders replaced. Entries
	// starting with "!" exclude.
	ModSrc []string

	DefaultBundleDir  string
	BundleExtension   string
	UseNewFormat      bool
	IgnoreBuildErrors bool
	UseFallback       bool
	CopySource        bool

	// Overrides are the --<key> values applied on top of the file.
	Overrides []Override
	// Warnings are the overrides that couldn't be applied.
	Warnings []Warning

	data Data
}

// Data returns a copy of the final configuration data.
func (s *Snapshot) Data() Data {
	return s.data.Clone()
}

// Get returns a resolved value by name. Unknown names are an
// *UnknownKeyError.
func (s *Snapshot) Get(key string) (any, error) {
	var v any
	switch key {
	case "configDir":
		v = s.ConfigDir
	case "filename":
		v = s.Filename
	case "exeDir":
		v = s.ExeDir
	case "modsDir":
		v = s.ModsDir
	case "tempDir":
		v = s.TempDir
	case "gameNumber":
		v = s.Game
	case "gameId":
		v = s.GameID
	case "toolsId":
		v = s.ToolsID
	case "fallbackToolsDir":
		v = s.FallbackToolsDir
	case "fallbackSteamAppsDir":
		v = s.FallbackSteamAppsDir
	case "includeDotFiles":
		v = s.IncludeDotFiles
	case "ignoredDirs":
		v = slices.Clone(s.IgnoredDirs)
	case "ignoredDirsPerMod":
		v = slices.Clone(s.IgnoredDirsPerMod)
	case "templateDir":
		v = s.TemplateDir
	case "itemPreview":
		v = s.ItemPreview
	case "templateName":
		v = TemplateNameToken
	case "templateTitle":
		v = TemplateTitleToken
	case "templateDescription":
		v = TemplateDescriptionToken
	case "coreSrc":
		v = slices.Clone(s.CoreSrc)
	case "modSrc":
		v = slices.Clone(s.ModSrc)
	case "defaultBundleDir":
		v = s.DefaultBundleDir
	case "bundleExtension":
		v = s.BundleExtension
	case "modFileExtension":
		v = ModFileExtension
	case "useNewFormat":
		v = s.UseNewFormat
	case "ignoreBuildErrors":
		v = s.IgnoreBuildErrors
	case "useFallback":
		v = s.UseFallback
	case "copySource":
		v = s.CopySource
	case "uploaderDir":
		v = UploaderDir
	case "uploaderExe":
		v = UploaderExe
	case "uploaderGameConfig":
		v = UploaderGameConfig
	case "stingrayDir":
		v = StingrayDir
	case "stingrayExe":
		v = StingrayExe
	default:
		return nil, &UnknownKeyError{Key: key}
	}
	return v, nil
}
