package main

import (
	"os"

	"github.com/OpenTraceLab/ringlayout/cmd/ringlayout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
