// SPDX-License-Identifier: MPL-2.0

package config

import (
	"github.com/spf13/afero"

	"github.com/dmbuilder/dmb/pkg/fspath"
	"github.com/dmbuilder/dmb/pkg/types"
)

// Candidate sources, in the order they are usually tried.
const (
	SourceFlagRC  Source = "rc flag"
	SourceFlagDir Source = "folder flag"
	SourceValue   Source = "config value"
	SourceCwd     Source = "current folder"
	SourceModsDir Source = "mods folder"
	SourceHome    Source = "home folder"
	SourceExeDir  Source = "executable folder"
)

const (
	// RequireNone accepts the candidate without probing.
	RequireNone Requirement = iota
	// RequireFile accepts the candidate if Probe is an existing file.
	RequireFile
	// RequireDir accepts the candidate if Probe is an existing folder.
	RequireDir
)

type (
	// Source tells where a candidate directory came from.
	Source string

	// Requirement is what must exist at a candidate's probe path.
	Requirement int

	// Candidate is one entry of a directory search. Dir is the answer when
	// the candidate is accepted, Probe the path tested for Require.
	Candidate struct {
		Source  Source
		Dir     types.FilesystemPath
		Probe   types.FilesystemPath
		Require Requirement
	}

	// Prober answers existence questions about paths.
	Prober interface {
		IsFile(p types.FilesystemPath) bool
		IsDir(p types.FilesystemPath) bool
	}

	fsProber struct {
		fs afero.Fs
	}

	// searchInput is everything a directory search depends on.
	searchInput struct {
		cwd      types.FilesystemPath
		home     types.FilesystemPath
		exeDir   types.FilesystemPath
		filename string
		rcDir    string
		hasRC    bool
		folder   string
		hasDir   bool
	}
)

// NewProber returns a Prober backed by fs.
func NewProber(fs afero.Fs) Prober {
	return fsProber{fs: fs}
}

func (p fsProber) IsFile(path types.FilesystemPath) bool {
	fi, err := p.fs.Stat(fspath.FromSlash(path))
	return err == nil && fi.Mode().IsRegular()
}

func (p fsProber) IsDir(path types.FilesystemPath) bool {
	ok, err := afero.DirExists(p.fs, fspath.FromSlash(path))
	return err == nil && ok
}

// accepts probes the candidate.
func (c Candidate) accepts(p Prober) bool {
	switch c.Require {
	case RequireFile:
		return p.IsFile(c.Probe)
	case RequireDir:
		return p.IsDir(c.Probe)
	default:
		return true
	}
}

// firstMatch returns the first candidate the prober accepts. Probing stops
// at the first success.
func firstMatch(candidates []Candidate, p Prober) (Candidate, bool) {
	for _, c := range candidates {
		if c.accepts(p) {
			return c, true
		}
	}
	return Candidate{}, false
}

// configDirCandidates lists where the configuration file may live. The last
// candidate always matches.
func configDirCandidates(in searchInput) []Candidate {
	var cs []Candidate
	if in.hasRC {
		cs = append(cs, Candidate{
			Source: SourceFlagRC,
			Dir:    fspath.Absolutify(types.FilesystemPath(in.rcDir), in.cwd),
		})
	}
	if in.hasDir {
		dir := fspath.Absolutify(types.FilesystemPath(in.folder), in.cwd)
		cs = append(cs, Candidate{
			Source:  SourceFlagDir,
			Dir:     dir,
			Probe:   fspath.JoinStr(dir, in.filename),
			Require: RequireFile,
		})
	}
	cs = append(cs, Candidate{
		Source:  SourceCwd,
		Dir:     in.cwd,
		Probe:   fspath.JoinStr(in.cwd, in.filename),
		Require: RequireFile,
	})
	if !in.home.IsEmpty() {
		cs = append(cs, Candidate{
			Source:  SourceHome,
			Dir:     in.home,
			Probe:   fspath.JoinStr(in.home, in.filename),
			Require: RequireFile,
		})
	}
	return append(cs, Candidate{Source: SourceExeDir, Dir: in.exeDir})
}

// templateDirCandidates lists where the template folder tpl may live. An
// absolute tpl is used as is. The last candidate always matches.
func templateDirCandidates(in searchInput, modsDir types.FilesystemPath, tpl string) []Candidate {
	fixed := fspath.Fix(types.FilesystemPath(tpl))
	if fspath.IsAbs(fixed) {
		return []Candidate{{Source: SourceValue, Dir: fixed}}
	}

	dirCandidate := func(src Source, base types.FilesystemPath) Candidate {
		dir := fspath.JoinStr(base, tpl)
		return Candidate{Source: src, Dir: dir, Probe: dir, Require: RequireDir}
	}

	var cs []Candidate
	if in.hasDir {
		cs = append(cs, dirCandidate(SourceModsDir, modsDir))
	}
	cs = append(cs, dirCandidate(SourceCwd, in.cwd))
	if !in.hasDir {
		cs = append(cs, dirCandidate(SourceModsDir, modsDir))
	}
	if !in.home.IsEmpty() {
		cs = append(cs, dirCandidate(SourceHome, in.home))
	}
	return append(cs, Candidate{Source: SourceExeDir, Dir: fspath.JoinStr(in.exeDir, tpl)})
}
