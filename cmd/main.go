package main

import (
	"fmt"
	"log/slog"
	"os"

	"vesselwatch/internal/app"
)

func main() {
	slog.Info("Starting VesselWatch pipeline...")

	if err := app.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start application: %v\n", err)
		os.Exit(1)
	}
}
