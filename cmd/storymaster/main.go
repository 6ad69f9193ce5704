// Package main is the entry point for the storymaster CLI.
package main

import (
	"os"

	"github.com/ArtCenter1/storymaster/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
