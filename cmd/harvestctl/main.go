package main

import (
	"os"

	"github.com/harveston/harvestengine/cmd/harvestctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
