package main

import (
	"os"
	"path"

	"github.com/spf13/cobra"
)

// rootCommand is the base CLI command that all subcommands are added to.
var rootCommand = &cobra.Command{
	Use:   path.Base(os.Args[0]),
	Short: "esrap: a packrat PEG parser",
	Long:  "esrap loads a grammar and runs it against input text using a packrat parsing engine with left-recursion support.",
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
