package main

import (
	"os"

	"github.com/TheusHen/mtseal/cmd/mtseal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
