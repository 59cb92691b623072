// Package main provides the dailyflow CLI.
package main

import (
	"os"

	"github.com/dailyflow/dailyflow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
