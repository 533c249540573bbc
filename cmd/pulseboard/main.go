// main is the entry point for the pulseboard CLI.
package main

import (
	"fmt"
	"os"

	"pulseboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
