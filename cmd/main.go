package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A local .env is optional; real environment variables win.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
