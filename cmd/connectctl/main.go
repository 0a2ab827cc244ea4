// Package main provides connectctl, a command-line client for the Connect
// suggestion engine that works directly against the configured store.
package main

import (
	"fmt"
	"os"

	"github.com/connectapp/connect-server/cmd/connectctl/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
