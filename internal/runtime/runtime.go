// SPDX-License-Identifier: MPL-2.0

// Package runtime runs the external Windows tools dmb drives: the Stingray
// compiler and the Workshop uploader.
package runtime

import (
	"context"
	"io"
)

type (
	// ExecutionContext contains all information needed to run a tool.
	ExecutionContext struct {
		// Context is the Go context for cancellation.
		Context context.Context
		// Path is the executable to run.
		Path string
		// Args are passed to the executable as is.
		Args []string
		// WorkDir overrides the working directory.
		WorkDir string
		// ExtraEnv is added to the inherited environment.
		ExtraEnv map[string]string
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
	}

	// Runtime runs tools.
	Runtime interface {
		// Execute runs the tool, streaming its output to the context's writers.
		Execute(ctx *ExecutionContext) *Result
		// ExecuteCapture runs the tool and returns its output in the Result.
		ExecuteCapture(ctx *ExecutionContext) *Result
	}
)
