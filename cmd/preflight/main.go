package main

import (
	"os"

	"github.com/kavrelis/preflight/cmd/preflight/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
