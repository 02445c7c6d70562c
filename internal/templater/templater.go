// SPDX-License-Identifier: MPL-2.0

// Package templater creates a mod folder from the template folder.
//
// Core files (the preview image and template_core_files) are copied as they
// are. Every other file gets the %%name, %%title and %%description
// placeholders replaced, in its contents and in its path.
package templater

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/internal/issue"
	"github.com/dmbuilder/dmb/internal/modtools"
	"github.com/dmbuilder/dmb/pkg/fspath"
	"github.com/dmbuilder/dmb/pkg/types"
)

type (
	// Params are the values substituted for the template placeholders.
	Params struct {
		Name        string
		Title       string
		Description string
	}

	// Templater copies templates on a filesystem.
	Templater struct {
		fs     afero.Fs
		logger *log.Logger
	}

	// FileSet selects files with doublestar globs. Patterns starting with "!"
	// exclude.
	FileSet struct {
		include []string
		exclude []string
	}
)

// New returns a Templater working on fs.
func New(fs afero.Fs, logger *log.Logger) *Templater {
	return &Templater{fs: fs, logger: logger}
}

// NewFileSet splits patterns into includes and "!" excludes.
func NewFileSet(patterns []string) FileSet {
	var s FileSet
	for _, p := range patterns {
		if rest, ok := strings.CutPrefix(p, "!"); ok {
			s.exclude = append(s.exclude, rest)
		} else {
			s.include = append(s.include, p)
		}
	}
	return s
}

// Match reports whether the slash path p is included and not excluded.
func (s FileSet) Match(p string) bool {
	return matchAny(s.include, p) && !matchAny(s.exclude, p)
}

func matchAny(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// Copy creates the mod folder for params.Name from the snapshot's template
// and returns the files written.
func (t *Templater) Copy(ctx context.Context, snap *config.Snapshot, params Params) ([]types.FilesystemPath, error) {
	tplDir := snap.TemplateDir
	if ok, _ := afero.DirExists(t.fs, fspath.FromSlash(tplDir)); !ok {
		return nil, issue.NewErrorContext().
			WithOperation("copy template").
			WithResource(tplDir.String()).
			WithSuggestions(
				"Use --template <folder> to point to a template",
				"Set template_dir in "+snap.Filename,
			).
			Wrap(os.ErrNotExist).
			Build()
	}

	core := NewFileSet(snap.CoreSrc)
	mod := NewFileSet(snap.ModSrc)
	dest := modtools.ModDir(snap, params.Name)
	replacer := strings.NewReplacer(
		config.TemplateNameToken, params.Name,
		config.TemplateTitleToken, params.Title,
		config.TemplateDescriptionToken, params.Description,
	)

	var written []types.FilesystemPath
	err := afero.Walk(t.fs, fspath.FromSlash(tplDir), func(osPath string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		p := fspath.Fix(types.FilesystemPath(filepath.ToSlash(osPath)))
		rel := strings.TrimPrefix(strings.TrimPrefix(p.String(), tplDir.String()), "/")
		if rel == "" {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") && !snap.IncludeDotFiles {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		var (
			target   types.FilesystemPath
			contents []byte
		)
		switch {
		case core.Match(p.String()):
			target = fspath.JoinStr(dest, rel)
			contents, err = afero.ReadFile(t.fs, osPath)
		case mod.Match(p.String()):
			target = fspath.JoinStr(dest, renamePath(rel, params.Name))
			contents, err = afero.ReadFile(t.fs, osPath)
			contents = []byte(replacer.Replace(string(contents)))
		default:
			return nil
		}
		if err != nil {
			return err
		}

		if err := t.fs.MkdirAll(fspath.FromSlash(fspath.Dir(target)), os.ModePerm); err != nil {
			return err
		}
		if err := afero.WriteFile(t.fs, fspath.FromSlash(target), contents, info.Mode().Perm()); err != nil {
			return err
		}
		written = append(written, target)
		if t.logger != nil {
			t.logger.Debug("copied template file", "file", rel, "to", target)
		}
		return nil
	})
	if err != nil {
		return written, issue.WrapWithContext(err, "copy template", tplDir.String())
	}
	return written, nil
}

// renamePath replaces the name placeholder in every segment of rel.
func renamePath(rel, name string) string {
	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = strings.ReplaceAll(s, config.TemplateNameToken, name)
	}
	return strings.Join(segments, "/")
}
