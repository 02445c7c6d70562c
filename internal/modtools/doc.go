// SPDX-License-Identifier: MPL-2.0

// Package modtools holds the helpers shared by the dmb tasks: mod folder
// naming and listing, the Workshop item cfg file and locating the game's
// mod tools.
package modtools
