package main

import (
	"os"

	"github.com/agentmodels/pagekit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
