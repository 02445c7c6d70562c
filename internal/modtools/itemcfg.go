// SPDX-License-Identifier: MPL-2.0

package modtools

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/pkg/fspath"
	"github.com/dmbuilder/dmb/pkg/types"
)

// Workshop visibility values accepted by the uploader.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
)

var (
	cfgLineRe   = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*?)\s*;?\s*$`)
	cfgStringRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
	cfgNumberRe = regexp.MustCompile(`^(\d+)L?$`)
)

// ItemCfg is the Workshop item description the uploader reads.
type ItemCfg struct {
	Title       string
	Description string
	Preview     string
	Content     string
	Language    string
	Visibility  string
	Tags        []string
	// PublishedID is the Workshop item id, empty until the first upload.
	PublishedID string
}

// ItemCfgPath returns the mod's item cfg for the selected game.
func ItemCfgPath(snap *config.Snapshot, name string) types.FilesystemPath {
	return fspath.JoinStr(ModDir(snap, name), "itemV"+strconv.Itoa(int(snap.Game))+".cfg")
}

// NewItemCfg returns the item cfg of a freshly created mod. Empty fields take
// the usual defaults.
func NewItemCfg(snap *config.Snapshot, params ItemCfg) ItemCfg {
	cfg := params
	if cfg.Preview == "" {
		cfg.Preview = snap.ItemPreview
	}
	if cfg.Content == "" {
		cfg.Content = snap.DefaultBundleDir
	}
	if cfg.Language == "" {
		cfg.Language = "english"
	}
	if cfg.Visibility == "" {
		cfg.Visibility = VisibilityPrivate
	}
	return cfg
}

// ValidVisibility reports whether v is accepted by the Workshop.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPrivate, VisibilityPublic, VisibilityFriends:
		return true
	default:
		return false
	}
}

// ParseTags splits a "tag1; tag2" list.
func ParseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ";") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Marshal renders the cfg in the uploader's format.
func (c ItemCfg) Marshal() []byte {
	var buf bytes.Buffer
	writeString := func(key, value string) {
		fmt.Fprintf(&buf, "%s = %s;\n", key, quoteCfg(value))
	}
	writeString("title", c.Title)
	writeString("description", c.Description)
	writeString("preview", c.Preview)
	writeString("content", c.Content)
	writeString("language", c.Language)
	writeString("visibility", c.Visibility)
	if c.PublishedID != "" {
		fmt.Fprintf(&buf, "published_id = %sL;\n", c.PublishedID)
	}

	quoted := make([]string, len(c.Tags))
	for i, t := range c.Tags {
		quoted[i] = quoteCfg(t)
	}
	if len(quoted) == 0 {
		buf.WriteString("tags = [ ];\n")
	} else {
		fmt.Fprintf(&buf, "tags = [ %s ];\n", strings.Join(quoted, ", "))
	}
	return buf.Bytes()
}

// UnmarshalItemCfg parses a cfg file. Unknown keys are ignored.
func UnmarshalItemCfg(b []byte) (ItemCfg, error) {
	var c ItemCfg
	sc := bufio.NewScanner(bytes.NewReader(b))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		m := cfgLineRe.FindStringSubmatch(line)
		if m == nil {
			return ItemCfg{}, fmt.Errorf("line %d: expected key = value;", n)
		}
		key, raw := m[1], m[2]

		switch key {
		case "tags":
			for _, s := range cfgStringRe.FindAllStringSubmatch(raw, -1) {
				c.Tags = append(c.Tags, unquoteCfg(s[1]))
			}
		case "published_id":
			id := cfgNumberRe.FindStringSubmatch(raw)
			if id == nil {
				return ItemCfg{}, fmt.Errorf("line %d: invalid published_id %q", n, raw)
			}
			c.PublishedID = id[1]
		default:
			s := cfgStringRe.FindStringSubmatch(raw)
			if s == nil {
				continue
			}
			v := unquoteCfg(s[1])
			switch key {
			case "title":
				c.Title = v
			case "description":
				c.Description = v
			case "preview":
				c.Preview = v
			case "content":
				c.Content = v
			case "language":
				c.Language = v
			case "visibility":
				c.Visibility = v
			}
		}
	}
	return c, sc.Err()
}

// WriteItemCfg writes cfg to path.
func WriteItemCfg(fs afero.Fs, path types.FilesystemPath, cfg ItemCfg) error {
	return afero.WriteFile(fs, fspath.FromSlash(path), cfg.Marshal(), 0o644)
}

// ReadItemCfg reads the cfg at path.
func ReadItemCfg(fs afero.Fs, path types.FilesystemPath) (ItemCfg, error) {
	b, err := afero.ReadFile(fs, fspath.FromSlash(path))
	if err != nil {
		return ItemCfg{}, err
	}
	cfg, err := UnmarshalItemCfg(b)
	if err != nil {
		return ItemCfg{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var cfgEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func quoteCfg(s string) string {
	return `"` + cfgEscaper.Replace(s) + `"`
}

func unquoteCfg(s string) string {
	if v, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return v
	}
	return s
}
