// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestMustWriteFileCreatesParents(t *testing.T) {
	t.Parallel()

	fs := MemFs(t, "/mods")
	MustWriteFile(t, fs, "/mods/a/b/c.txt", "hello")

	if got := MustReadFile(t, fs, "/mods/a/b/c.txt"); got != "hello" {
		t.Errorf("MustReadFile() = %q", got)
	}
	if ok, _ := afero.DirExists(fs, filepath.FromSlash("/mods/a/b")); !ok {
		t.Error("parent folder not created")
	}
}

func TestMustChdir(t *testing.T) {
	dir := t.TempDir()
	original, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	restore := MustChdir(t, dir)
	got, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(dir)
	if got, _ = filepath.EvalSymlinks(got); got != want {
		t.Errorf("Getwd() = %q, want %q", got, want)
	}

	restore()
	if got, _ := os.Getwd(); got != original {
		t.Errorf("after restore, Getwd() = %q, want %q", got, original)
	}
}
