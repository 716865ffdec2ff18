package main

import (
	"fmt"
	"os"

	"trade-journal-go/cmd/journal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
