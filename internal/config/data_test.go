// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"reflect"
	"testing"
)

func TestMergeFillsDefaults(t *testing.T) {
	t.Parallel()

	schema := DefaultSchema()
	got, err := Merge(Data{KeyGame: float64(1), KeyTempDir: nil}, schema, false, DefaultFilename)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	if got[KeyGame] != 1 {
		t.Errorf("game = %#v, want int 1", got[KeyGame])
	}
	if got[KeyTempDir] != "" {
		t.Errorf("null temp_dir should take the default, got %#v", got[KeyTempDir])
	}
	if got[KeyModsDir] != "." {
		t.Errorf("absent mods_dir should take the default, got %#v", got[KeyModsDir])
	}
	for _, k := range schema.Keys() {
		if _, ok := got[k]; !ok {
			t.Errorf("merged data is missing %q", k)
		}
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()

	schema := DefaultSchema()
	first, err := Merge(Data{KeyModsDir: "mods", KeyIgnoredDirs: []any{"a", "b"}, "custom": "x"}, schema, false, DefaultFilename)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	second, err := Merge(first, schema, false, DefaultFilename)
	if err != nil {
		t.Fatalf("second Merge() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("merging valid data changed it:\n%v\n%v", first, second)
	}
}

func TestMergeResetWins(t *testing.T) {
	t.Parallel()

	schema := DefaultSchema()
	raw := Data{KeyGame: "not a number", KeyModsDir: "elsewhere", KeyIgnoredDirs: "x"}
	got, err := Merge(raw, schema, true, DefaultFilename)
	if err != nil {
		t.Fatalf("Merge() with reset error = %v", err)
	}
	if !reflect.DeepEqual(got, schema.Defaults()) {
		t.Errorf("reset should yield the defaults, got %v", got)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	raw := Data{KeyIgnoredDirs: []string{"a"}}
	got, err := Merge(raw, DefaultSchema(), false, DefaultFilename)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	got[KeyIgnoredDirs].([]string)[0] = "changed"

	if len(raw) != 1 || raw[KeyIgnoredDirs].([]string)[0] != "a" {
		t.Errorf("input was modified: %v", raw)
	}
}

func TestMergeKeepsUnknownKeys(t *testing.T) {
	t.Parallel()

	got, err := Merge(Data{"my_key": []any{"x"}}, DefaultSchema(), false, DefaultFilename)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if !reflect.DeepEqual(got["my_key"], []any{"x"}) {
		t.Errorf("unknown key = %#v", got["my_key"])
	}
}

func TestMergeTypeMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      Data
		wantMsg  string
		wantKind Kind
	}{
		{
			name:     "string for integer",
			raw:      Data{KeyGame: "2"},
			wantMsg:  `invalid value in .dmbrc: "game" must be of type integer, was string instead`,
			wantKind: KindInteger,
		},
		{
			name:     "number for string",
			raw:      Data{KeyModsDir: float64(5)},
			wantMsg:  `invalid value in .dmbrc: "mods_dir" must be of type string, was integer instead`,
			wantKind: KindString,
		},
		{
			name:     "fraction for integer",
			raw:      Data{KeyGame: 1.5},
			wantMsg:  `invalid value in .dmbrc: "game" must be of type integer, was number instead`,
			wantKind: KindInteger,
		},
		{
			name:     "string for list",
			raw:      Data{KeyIgnoredDirs: "node_modules"},
			wantMsg:  `invalid value in .dmbrc: "ignored_dirs" must be of type list, was string instead`,
			wantKind: KindStringList,
		},
		{
			name:     "object for list",
			raw:      Data{KeyTemplateCoreFiles: map[string]any{}},
			wantMsg:  `invalid value in .dmbrc: "template_core_files" must be of type list, was object instead`,
			wantKind: KindStringList,
		},
		{
			name:     "list for boolean",
			raw:      Data{KeyUseFallback: []any{true}},
			wantMsg:  `invalid value in .dmbrc: "use_fallback" must be of type boolean, was list instead`,
			wantKind: KindBoolean,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Merge(tt.raw, DefaultSchema(), false, DefaultFilename)
			if !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("Merge() error = %v, want ErrInvalidValue", err)
			}
			var ive *InvalidValueError
			if !errors.As(err, &ive) {
				t.Fatalf("error is %T, want *InvalidValueError", err)
			}
			if ive.Expected != tt.wantKind {
				t.Errorf("Expected = %s, want %s", ive.Expected, tt.wantKind)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q\nwant      %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestMergeListElementsNotChecked(t *testing.T) {
	t.Parallel()

	got, err := Merge(Data{KeyIgnoredDirs: []any{"a", float64(1), true}}, DefaultSchema(), false, DefaultFilename)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	want := []any{"a", float64(1), true}
	if !reflect.DeepEqual(got[KeyIgnoredDirs], want) {
		t.Errorf("ignored_dirs = %#v, want %#v", got[KeyIgnoredDirs], want)
	}
}

func TestToStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"strings", []string{"a", "b"}, []string{"a", "b"}},
		{"mixed elements", []any{"a", float64(1), true}, []string{"a", "1", "true"}},
		{"not a list", "a", []string{}},
		{"nil", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := toStrings(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("toStrings(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDataString(t *testing.T) {
	t.Parallel()

	if got := (Data{}).String(); got != "[config data]" {
		t.Errorf("Data.String() = %q", got)
	}
}
