package main

import (
	"os"

	"github.com/lapwatch/lapwatch/cmd/lapwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
