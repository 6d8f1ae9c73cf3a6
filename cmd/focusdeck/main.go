package main

import (
	"os"

	"github.com/focusdeck/focusdeck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
