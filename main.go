package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"imsforecast.app/cmd"
)

func main() {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found or error loading it")
	}

	cmd.Execute()
}
