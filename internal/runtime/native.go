// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"sort"

	"github.com/dmbuilder/dmb/pkg/types"
)

// NativeRuntime runs tools as host processes.
type NativeRuntime struct{}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Execute runs the tool with its output streamed to the context's writers.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	cmd := r.command(ctx)
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	return resultOf(cmd.Run())
}

// ExecuteCapture runs the tool and captures its output.
func (r *NativeRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	cmd := r.command(ctx)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := resultOf(cmd.Run())
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

func (r *NativeRuntime) command(ctx *ExecutionContext) *exec.Cmd {
	goCtx := ctx.Context
	if goCtx == nil {
		goCtx = context.Background()
	}
	cmd := exec.CommandContext(goCtx, ctx.Path, ctx.Args...)
	if ctx.WorkDir != "" {
		cmd.Dir = ctx.WorkDir
	}
	if len(ctx.ExtraEnv) > 0 {
		cmd.Env = append(slices.Clone(os.Environ()), envToSlice(ctx.ExtraEnv)...)
	}
	return cmd
}

func resultOf(err error) *Result {
	if err == nil {
		return NewSuccessResult()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Result{ExitCode: types.ExitCode(exitErr.ExitCode())}
	}
	return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to execute command: %w", err))
}

// envToSlice renders env as sorted KEY=VALUE pairs.
func envToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
