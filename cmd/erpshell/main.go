package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

var exit = os.Exit

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}
