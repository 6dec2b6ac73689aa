// Package main is the entry point for the azdemo CLI.
//
// azdemo provisions and tears down short-lived Azure API Management demo
// environments by driving the az CLI and Bicep templates. It keeps no local
// state: environments are discovered from resource group tags.
//
// Commands: deploy, cleanup, version.
//
// For detailed usage information, run:
//
//	azdemo --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/azdemo/cmd/azdemo/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
