// Package main is the regscout command line entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ppiankov/regscout/internal/cli"
)

func main() {
	// Load .env file if it exists (OPENAI_API_KEY, REGSCOUT_*)
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
