package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatherforecast/api"
	"weatherforecast/config"
	"weatherforecast/datasource"
	"weatherforecast/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	// Parse command line arguments
	configFile := flag.String("config", "", "Path to optional YAML configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadService(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logs := logger.New(os.Stderr, "forecast-service", cfg.Level())
	logs.Debugf("Configuration: port=%d days=%d environment=%s", cfg.ListenPort, cfg.ForecastDays, cfg.Environment)

	generator := datasource.NewGenerator(cfg.ForecastDays)
	server := api.NewServer(generator, cfg.Addr(), logs)

	// Set up channel for graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	// Start the API server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case sig := <-shutdownChan:
		logs.Infof("Shutting down due to %s signal", sig)
	case err := <-serverErr:
		logs.Errorf("Server stopped: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logs.Errorf("Forced shutdown: %v", err)
	}

	logs.Infof("Shutdown complete")
}
