package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("ledgerctl version %s\n", version)
		os.Exit(0)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
