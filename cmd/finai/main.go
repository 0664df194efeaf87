package main

import (
	"os"

	"github.com/finai-dev/finai/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
