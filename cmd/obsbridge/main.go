// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli := CLI{}
	cli.stdout = os.Stdout

	ctx := kong.Parse(&cli,
		kong.Name("obsbridge"),
		kong.Description("Bridge OBS Studio state to a local JSON file and control OBS from the shell."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
