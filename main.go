package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"walletguard/cmd"
)

func main() {
	// A .env file is optional; environment variables and the config file
	// cover everything it would provide.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
