package main

import (
	"os"

	"github.com/rentbook-dev/rentbook/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
