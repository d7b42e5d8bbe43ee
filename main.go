package main

import (
	"os"

	"github.com/bundlegen/bundlegen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
