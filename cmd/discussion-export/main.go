package main

import (
	"os"

	"github.com/custodia-labs/discussion-export/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
