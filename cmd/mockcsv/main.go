// Package main provides the mockcsv command.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/maive-lab/mockcsv/internal/cli"
)

func main() {
	// MOCKCSV_* settings may live in a .env file; it is optional.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
