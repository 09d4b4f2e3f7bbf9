package main

import (
	"fmt"
	"os"

	"payhook/cmd/payhook"
)

func main() {
	if err := payhook.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
