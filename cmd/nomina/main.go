package main

import (
	"os"

	"github.com/nomina-dev/nomina/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
