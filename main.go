// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/dmbuilder/dmb/cmd/dmb"

func main() {
	cmd.Execute()
}
