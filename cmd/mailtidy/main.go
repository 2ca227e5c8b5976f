// Package main is the entry point for the mailtidy CLI.
package main

import (
	"os"

	"github.com/mailtidy/mailtidy/cmd/mailtidy/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
