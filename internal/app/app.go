package app

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"vesselwatch/internal/config"
	"vesselwatch/internal/server"
)

const defaultCfgPath = "./config/config.json"

func Start() error {
	var (
		port     = flag.Int("port", 0, "HTTP port (overrides config)")
		cfgPath  = flag.String("config", defaultCfgPath, "Path to config file")
		helpFlag = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  vesselwatch [--config <path>] [--port <N>]\n")
		fmt.Fprintf(os.Stderr, "  vesselwatch --help\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --config PATH  Path to config file (default %s)\n", defaultCfgPath)
		fmt.Fprintf(os.Stderr, "  --port N       HTTP port number\n")
	}

	flag.Parse()

	if *helpFlag {
		flag.Usage()
		return nil
	}

	slog.Info("Loading configuration...", "path", *cfgPath)
	cfg, err := config.GetConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}

	if *port > 0 {
		cfg.App.Port = *port
	}
	slog.Info("Configuration loaded", "port", cfg.App.Port, "window_seconds", cfg.Aggregation.WindowSeconds)

	app := server.NewApp(cfg)

	if err := app.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("failed to run app: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
