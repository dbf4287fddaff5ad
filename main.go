package main

import (
	"os"

	"github.com/serverwarden/serverwarden/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
