package main

import (
	"os"

	"github.com/marmos91/podstore/cmd/podstore/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
