// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"

	"github.com/dmbuilder/dmb/internal/issue"
	"github.com/dmbuilder/dmb/pkg/fspath"
	"github.com/dmbuilder/dmb/pkg/types"
)

const (
	// DefaultFilename is the name of the configuration file.
	DefaultFilename = ".dmbrc"
	// DefaultTempDirName is the temp folder created inside the mods folder
	// when temp_dir is unspecified.
	DefaultTempDirName = ".temp"

	filePerm = 0o644

	// keyDelim never occurs in a key, so dotted keys stay flat.
	keyDelim = "\x00"
)

// errNotAnObject is returned when a configuration document isn't a JSON object.
var errNotAnObject = errors.New("configuration must be a JSON object")

// readOrCreate returns the raw contents of the configuration file at path.
// With reset an existing file is deleted first. A missing file is created
// with the schema defaults.
func readOrCreate(fs afero.Fs, path types.FilesystemPath, reset bool, schema Schema, logger *log.Logger) (Data, error) {
	logger = orDiscard(logger)
	osPath := fspath.FromSlash(path)
	prober := NewProber(fs)

	if reset && prober.IsFile(path) {
		logger.Info("deleting configuration", "path", path)
		if err := fs.Remove(osPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("delete configuration").
				WithResource(path.String()).
				WithSuggestion("Check that the file isn't read-only or open in another program").
				Wrap(err).
				Build()
		}
	}

	if !prober.IsFile(path) {
		logger.Info("creating default configuration", "path", path)
		b, err := Encode(schema.Defaults(), schema)
		if err == nil {
			err = afero.WriteFile(fs, osPath, b, filePerm)
		}
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("create configuration").
				WithResource(path.String()).
				WithSuggestions(
					"Check that the folder exists and is writable",
					"Use --rc <folder> to keep "+DefaultFilename+" somewhere else",
				).
				Wrap(err).
				Build()
		}
	}

	b, err := afero.ReadFile(fs, osPath)
	if err != nil {
		return nil, issue.WrapWithContext(err, "read configuration", path.String())
	}

	data, err := Decode(b)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse configuration").
			WithResource(path.String()).
			WithSuggestions(
				"Check the file for JSON syntax errors",
				"Run 'dmb config --reset' to restore the defaults",
			).
			Wrap(err).
			Build()
	}
	return data, nil
}

// Decode parses a configuration document. Comments and trailing commas are
// tolerated. Keys are kept exactly as written, including their case and
// any dots.
func Decode(b []byte) (Data, error) {
	trimmed := bytes.TrimSpace(jsonc.ToJSON(b))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotAnObject
	}

	k := koanf.NewWithConf(koanf.Conf{Delim: keyDelim})
	if err := k.Load(rawbytes.Provider(trimmed), json.Parser()); err != nil {
		return nil, err
	}
	return Data(k.Raw()), nil
}

// Encode serializes data with two-space indentation. Schema keys come first
// in schema order, followed by any other keys sorted by name.
func Encode(data Data, schema Schema) ([]byte, error) {
	keys := make([]string, 0, len(data))
	for _, k := range schema.Keys() {
		if _, ok := data[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range data {
		if _, known := schema.Lookup(k); !known {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	keys = append(keys, extra...)

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(",")
		}
		name, err := stdjson.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := stdjson.MarshalIndent(data[k], "  ", "  ")
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n  ")
		buf.Write(name)
		buf.WriteString(": ")
		buf.Write(value)
	}
	if len(keys) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Save writes the snapshot's data back to its configuration file. Data that
// was supplied directly is never written.
func Save(fs afero.Fs, snap *Snapshot) error {
	if snap.Supplied {
		return nil
	}
	path := fspath.JoinStr(snap.ConfigDir, snap.Filename)
	b, err := Encode(snap.data, DefaultSchema())
	if err == nil {
		err = afero.WriteFile(fs, fspath.FromSlash(path), b, filePerm)
	}
	if err != nil {
		return issue.WrapWithContext(err, "write configuration", path.String())
	}
	return nil
}
