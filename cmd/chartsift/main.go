package main

import (
	"os"

	"github.com/chartsift/chartsift/internal/adapters/driving/cli"
)

func main() {
	// Cobra prints the failing command's error to stderr.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
