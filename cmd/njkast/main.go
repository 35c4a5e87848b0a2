// Package main provides the njkast command.
package main

import (
	"os"

	"github.com/leapstack-labs/njkast/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
