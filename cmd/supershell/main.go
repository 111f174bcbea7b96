// Package main is the entry point of the Super-Shell application.
package main

import (
	"fmt"
	"os"
)

// main runs the root command and exits with the status it produced.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
