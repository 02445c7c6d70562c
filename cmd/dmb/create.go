// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/internal/modtools"
	"github.com/dmbuilder/dmb/internal/templater"
	"github.com/dmbuilder/dmb/pkg/fspath"
)

// createOptions are the item cfg values given on the command line.
type createOptions struct {
	title       string
	description string
	language    string
	visibility  string
	content     string
	tags        string
}

// newCreateCommand creates the `dmb create` command.
func newCreateCommand(app *App) *cobra.Command {
	opts := &createOptions{}
	cmd := &cobra.Command{
		Use:   "create <mod>",
		Short: "Create a mod from the template",
		Long: `Create a new mod folder from the template and write its item cfg.

The placeholders %%name, %%title and %%description are replaced in the
template files, and %%name in their paths.`,
		Example: `  dmb create my_mod
  dmb create my_mod -t "My Mod" -d "Does things" -v public --tags "QoL; UI"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.resolve(cmd)
			if err == nil {
				err = createMod(cmd.Context(), app, snap, args[0], opts)
			}
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintf(app.stdout, "%s Created %s in %s\n",
				SuccessStyle.Render("✓"), CmdStyle.Render(args[0]), modtools.ModDir(snap, args[0]))
			return nil
		},
	}
	addCreateFlags(cmd.Flags(), opts)
	return cmd
}

func addCreateFlags(flags *pflag.FlagSet, opts *createOptions) {
	flags.StringVarP(&opts.title, "title", "t", "", "Workshop title (default: the mod name)")
	flags.StringVarP(&opts.description, "description", "d", "", "Workshop description")
	flags.StringVarP(&opts.language, "language", "l", "", "Workshop language (default: english)")
	flags.StringVarP(&opts.visibility, "visibility", "v", "", "private, public or friends (default: private)")
	flags.StringVarP(&opts.content, "content", "c", "", "folder uploaded to the Workshop (default: the bundle folder)")
	flags.StringVar(&opts.tags, "tags", "", `Workshop tags separated by ";"`)
}

func (o *createOptions) params(name string) templater.Params {
	title := o.title
	if title == "" {
		title = name
	}
	description := o.description
	if description == "" {
		description = title + " description"
	}
	return templater.Params{Name: name, Title: title, Description: description}
}

// createMod copies the template into a new mod folder and writes its item
// cfg. The folder is removed again if any step fails.
func createMod(ctx context.Context, app *App, snap *config.Snapshot, name string, opts *createOptions) (err error) {
	if err := modtools.CheckNew(app.Fs, snap, name); err != nil {
		return err
	}
	if opts.visibility != "" && !modtools.ValidVisibility(opts.visibility) {
		return fmt.Errorf("visibility %q is not one of %s, %s, %s",
			opts.visibility, modtools.VisibilityPrivate, modtools.VisibilityPublic, modtools.VisibilityFriends)
	}

	modDir := modtools.ModDir(snap, name)
	defer func() {
		if err == nil {
			return
		}
		if rmErr := app.Fs.RemoveAll(fspath.FromSlash(modDir)); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
	}()

	params := opts.params(name)
	if _, err := app.templater().Copy(ctx, snap, params); err != nil {
		return err
	}

	cfg := modtools.NewItemCfg(snap, modtools.ItemCfg{
		Title:       params.Title,
		Description: params.Description,
		Content:     opts.content,
		Language:    opts.language,
		Visibility:  opts.visibility,
		Tags:        modtools.ParseTags(opts.tags),
	})
	return modtools.WriteItemCfg(app.Fs, modtools.ItemCfgPath(snap, name), cfg)
}
