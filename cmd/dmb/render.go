// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmbuilder/dmb/internal/builder"
	"github.com/dmbuilder/dmb/internal/config"
	"github.com/dmbuilder/dmb/internal/issue"
	"github.com/dmbuilder/dmb/internal/modtools"
	"github.com/dmbuilder/dmb/internal/uploader"
	"github.com/dmbuilder/dmb/pkg/types"
)

// issueStyle is the glamour style used for catalog entries.
const issueStyle = "dark"

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	if ae := issue.As(err); ae != nil {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// issueFor maps err to the catalog entry explaining it. The second result is
// false for errors without one.
func issueFor(err error) (issue.Id, bool) {
	switch {
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId, true
	case errors.Is(err, config.ErrModsDirNotFound), errors.Is(err, config.ErrModsDirUnspecified):
		return issue.ModsFolderNotFoundId, true
	case errors.Is(err, config.ErrInvalidValue), errors.Is(err, config.ErrUnsupportedGame):
		return issue.ConfigInvalidId, true
	case errors.Is(err, modtools.ErrInvalidModName):
		return issue.InvalidModNameId, true
	case errors.Is(err, modtools.ErrModExists):
		return issue.ModAlreadyExistsId, true
	case errors.Is(err, modtools.ErrToolsNotFound):
		return issue.ModToolsNotFoundId, true
	case errors.Is(err, builder.ErrBuildFailed):
		return issue.BuildFailedId, true
	case errors.Is(err, uploader.ErrUploadFailed):
		return issue.UploadFailedId, true
	}

	if ae := issue.As(err); ae != nil {
		switch {
		case strings.HasSuffix(ae.Operation, "configuration"):
			return issue.ConfigLoadFailedId, true
		case ae.Operation == "copy template" && errors.Is(err, os.ErrNotExist):
			return issue.TemplateNotFoundId, true
		}
	}
	return 0, false
}

// renderFailure writes err and, for well-known failures, the catalog help to w.
func renderFailure(w io.Writer, err error, debug bool) {
	if id, ok := issueFor(err); ok {
		if rendered, rerr := issue.Get(id).Render(issueStyle); rerr == nil {
			fmt.Fprint(w, rendered)
		}
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, debug))
}

// fail reports err on the app's stderr and turns it into an ExitError. Cobra's
// own error and usage output is silenced since the failure is already shown.
func (a *App) fail(cmd *cobra.Command, err error) error {
	settings, _ := loadUISettings(cmd.Flags())
	renderFailure(a.stderr, err, settings.Debug)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &ExitError{Code: types.ExitFailure, Err: err}
}
