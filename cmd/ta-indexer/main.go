package main

import (
	"os"

	"github.com/futig/virtual-ta/cmd/ta-indexer/commands"
)

func main() {
	if err := commands.NewIndexerCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
