// Package cli provides the command-line interface for tradeanalyser
package cli

import (
	"errors"
	"fmt"
	"os"
)

// ErrReported marks failures that were already shown to the user.
var ErrReported = errors.New("failure already reported")

// Run starts the CLI application
func Run() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
