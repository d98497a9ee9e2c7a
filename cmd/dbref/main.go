// Package main is the entry point for the dbref CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/dbref/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
