// Package main provides the entry point for the sandboxcheck CLI.
package main

import (
	"os"

	"github.com/buildcamp/sandboxcheck/cmd/sandboxcheck/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
