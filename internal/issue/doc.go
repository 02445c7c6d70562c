// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the file involved and hints
// for fixing it. The catalog in issue.go holds longer Markdown help pages that
// the CLI renders with glamour after well-known failures (missing mods folder,
// broken .dmbrc, missing SDK...).
package issue
