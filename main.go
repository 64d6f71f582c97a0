package main

import (
	"os"

	"github.com/wanderlist/wanderlist/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
