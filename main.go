package main

import (
	"os"

	"github.com/clifactory/clifactory/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
