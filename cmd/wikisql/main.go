package main

import (
	"os"

	"github.com/wikisql/wikisql/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
