// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	ConfigInvalidId
	ModsFolderNotFoundId
	TemplateNotFoundId
	InvalidModNameId
	ModAlreadyExistsId
	ModToolsNotFoundId
	BuildFailedId
	UploadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // wiki pages describing the failing area
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var extra strings.Builder
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extra.WriteString("\n\n## See also:\n")
		for _, link := range i.docLinks {
			extra.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
		for _, link := range i.extLinks {
			extra.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
	}
	return render(string(i.mdMsg)+extra.String(), stylePath)
}

const wikiLink HttpLink = "https://github.com/Vermintide-Mod-Framework/Vermintide-Mod-Builder/wiki"

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load .dmbrc!

The configuration file could not be read, created or parsed.

## Search locations (in order of precedence):
1. The folder passed with ` + "`--rc`" + `
2. The mods folder passed with ` + "`-f`" + `
3. Current directory
4. Your home directory
5. The folder with the dmb executable

## Things you can try:
- Check that the file contains a valid JSON object
- Check that you can write to the folder shown above
- Recreate the file from defaults:
~~~
$ dmb config --reset
~~~`,
		docLinks: []HttpLink{wikiLink + "/command-:-config"},
	}

	configInvalidIssue = &Issue{
		id: ConfigInvalidId,
		mdMsg: `
# Invalid value in .dmbrc!

One of the keys has a value of the wrong type, or the game number is not supported.

## Things you can try:
- Fix the key named in the error above
- Reset a single key to its default:
~~~
$ dmb config --<key>=null
~~~

- Select a supported game:
~~~
$ dmb config --game=2
~~~`,
		docLinks: []HttpLink{wikiLink + "/command-:-config"},
	}

	modsFolderNotFoundIssue = &Issue{
		id: ModsFolderNotFoundId,
		mdMsg: `
# Mods folder not found!

The mods folder from .dmbrc or ` + "`-f`" + ` doesn't exist.

## Things you can try:
- Point dmb at an existing folder for one run:
~~~
$ dmb build -f /path/to/mods
~~~

- Or save it in .dmbrc:
~~~
$ dmb config --mods_dir=/path/to/mods
~~~`,
	}

	templateNotFoundIssue = &Issue{
		id: TemplateNotFoundId,
		mdMsg: `
# Template folder not found!

dmb needs a template folder to create new mods.

## Search locations (in order of precedence):
1. The folder passed with ` + "`--template`" + ` (if absolute)
2. Inside the mods folder passed with ` + "`-f`" + `
3. Current directory
4. Inside the mods folder from .dmbrc
5. Your home directory
6. The folder with the dmb executable

## Things you can try:
- Pass the template explicitly:
~~~
$ dmb create my_mod --template /path/to/.template-dmf
~~~`,
		docLinks: []HttpLink{wikiLink + "/command-:-create"},
	}

	invalidModNameIssue = &Issue{
		id: InvalidModNameId,
		mdMsg: `
# Invalid mod name!

Mod names become folder names, so they can't contain slashes, start with a dot
or be a reserved Windows device name (CON, NUL, COM1...).`,
	}

	modAlreadyExistsIssue = &Issue{
		id: ModAlreadyExistsId,
		mdMsg: `
# Mod folder already exists!

## Things you can try:
- Pick another name
- Build the existing mod instead:
~~~
$ dmb build <mod_name>
~~~`,
	}

	modToolsNotFoundIssue = &Issue{
		id: ModToolsNotFoundId,
		mdMsg: `
# Mod tools not found!

dmb couldn't find the Stingray compiler of the SDK for the selected game.

## Things you can try:
- Install the SDK from Steam
- Point dmb at the SDK folder and use it directly:
~~~
$ dmb config --fallback_tools_dir2="D:/SteamLibrary/steamapps/common/Vermintide 2 SDK" --use_fallback=true
~~~`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Build failed!

The Stingray compiler exited with an error.

## Things you can try:
- Rerun with ` + "`--verbose`" + ` to see the compiler output
- Remove stale temp files with ` + "`--clean`" + `
- Ignore compiler errors for this run with ` + "`--ignore-errors`",
		docLinks: []HttpLink{wikiLink + "/command-:-build"},
	}

	uploadFailedIssue = &Issue{
		id: UploadFailedId,
		mdMsg: `
# Upload failed!

The Workshop uploader exited with an error.

## Things you can try:
- Make sure Steam is running and you are logged in
- Check the item cfg of the mod (title, content folder, preview image)`,
		docLinks: []HttpLink{wikiLink + "/command-:-upload"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Things you can try:
- Check file/folder permissions
- Run dmb from a folder you own
- Move .dmbrc somewhere writable and pass it with ` + "`--rc`",
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		configInvalidIssue.Id():      configInvalidIssue,
		modsFolderNotFoundIssue.Id(): modsFolderNotFoundIssue,
		templateNotFoundIssue.Id():   templateNotFoundIssue,
		invalidModNameIssue.Id():     invalidModNameIssue,
		modAlreadyExistsIssue.Id():   modAlreadyExistsIssue,
		modToolsNotFoundIssue.Id():   modToolsNotFoundIssue,
		buildFailedIssue.Id():        buildFailedIssue,
		uploadFailedIssue.Id():       uploadFailedIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
