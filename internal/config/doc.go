// SPDX-License-Identifier: MPL-2.0

// Package config resolves the dmb configuration for one invocation.
//
// Resolution runs in a fixed order: locate the .dmbrc folder, read it (creating
// or resetting it when needed), merge it against the default schema with type
// validation, apply --<key>=<value> overrides and derive the runtime values the
// tasks need (mods/temp/template folders, per-game keys, template file sets).
// The result is an immutable Snapshot; nothing is exposed when any step fails.
//
// The filesystem is reached through afero.Fs and command-line values through
// the Lookup interface, so the whole pipeline runs against in-memory fakes in
// tests.
package config
