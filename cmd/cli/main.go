package main

import (
	"os"

	"github.com/bookline-dev/bookline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
