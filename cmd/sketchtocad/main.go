package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

func main() {
	// Fang wraps the command tree with styled help, completions,
	// manpages, and --version.
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
