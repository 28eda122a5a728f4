// Command velux is a command-line client for a VELUX KLF 200 home
// automation gateway: one gateway command per invocation, decoded result on
// stdout as JSON.
package main

import (
	"os"

	"github.com/klf200/velux/cmd/velux/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("%v", err)
		os.Exit(1)
	}
}
