package main

import (
	"os"

	"github.com/gogpu/shaderchain/cmd/shaderchain/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
