package main

import (
	"fmt"
	"os"

	"github.com/sozercan/thesis-ai/internal/cli"
)

var (
	version = "dev" // Overwritten at build time
)

func main() {
	rootCmd := cli.NewRootCmd(version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
