// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"fmt"

	"github.com/dmbuilder/dmb/pkg/types"
)

// Result contains the result of a tool run.
type Result struct {
	// ExitCode is the exit code of the tool.
	ExitCode types.ExitCode
	// Error is set when the tool couldn't be run at all.
	Error error
	// Output contains captured stdout (if captured).
	Output string
	// ErrOutput contains captured stderr (if captured).
	ErrOutput string
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// Success reports whether the tool ran and exited with 0.
func (r *Result) Success() bool {
	return r.Error == nil && r.ExitCode.IsSuccess()
}

// Err returns nil on success, the run error, or an error naming the exit code.
func (r *Result) Err() error {
	switch {
	case r.Error != nil:
		return r.Error
	case !r.ExitCode.IsSuccess():
		return fmt.Errorf("exit status %s", r.ExitCode)
	default:
		return nil
	}
}
