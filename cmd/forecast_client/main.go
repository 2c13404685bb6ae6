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

	"weatherforecast/collector"
	"weatherforecast/config"
	"weatherforecast/datasource"
	"weatherforecast/frontend"
	"weatherforecast/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	configFile := flag.String("config", "", "Path to optional YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadClient(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logs := logger.New(os.Stderr, "forecast-client", cfg.Level())
	logs.Infof("Using forecast service at %s", cfg.ServiceBaseURL)

	source, serviceSource, err := newSources(cfg, logs)
	if err != nil {
		log.Fatalf("Invalid service address: %v", err)
	}

	// The service may still be starting; the prober only reports, it never blocks startup
	prober := newUpstreamCheck(cfg, serviceSource, logs)
	stopProbing := func() {}
	if prober != nil {
		stopProbing = prober.Start(context.Background())
	}

	renderer := frontend.NewRenderer(source, serviceSource.BaseURL(), cfg.Verbose(), logs)
	renderer.SetFetchTimeout(cfg.FetchBudget())
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           frontend.NewRouter(renderer, prober, logs),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logs.Infof("Starting forecast client on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-shutdownChan:
		logs.Infof("Shutting down due to %s signal", sig)
	case err := <-serverErr:
		logs.Errorf("Server stopped: %v", err)
		stopProbing()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logs.Errorf("Forced shutdown: %v", err)
	}
	stopProbing()

	logs.Infof("Shutdown complete")
}

// newSources returns the source page requests fetch through and the raw
// service source underneath it
func newSources(cfg *config.ClientConfig, logs *logger.Logger) (datasource.ForecastSource, *datasource.ServiceSource, error) {
	serviceSource, err := datasource.NewServiceSource(cfg.ServiceBaseURL, cfg.RequestTimeout,
		datasource.WithRetries(cfg.FetchRetries), datasource.WithRetryPause(config.RetryPause))
	if err != nil {
		return nil, nil, err
	}

	var source datasource.ForecastSource = serviceSource
	if cfg.RateLimitRPS > 0 {
		source = datasource.NewRateLimitedForecastSource(serviceSource, cfg.RateLimitRPS, cfg.RateLimitBurst)
		logs.Infof("Applied rate limiting to forecast fetches: %.2f req/s, burst %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return source, serviceSource, nil
}

// newUpstreamCheck returns nil when upstream checks are disabled.
// Checks go to the raw service source so they never take a page request's token.
func newUpstreamCheck(cfg *config.ClientConfig, upstream *datasource.ServiceSource, logs *logger.Logger) *collector.Prober {
	if cfg.ProbeInterval <= 0 {
		return nil
	}
	prober := collector.NewProber(upstream, cfg.ProbeInterval, logs)
	prober.SetFetchTimeout(cfg.RequestTimeout)
	return prober
}
