package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"weatherforecast/datasource"
	"weatherforecast/logger"
	"weatherforecast/middleware"
)

// Server represents the Forecast Service HTTP server
type Server struct {
	generator *datasource.Generator
	router    *mux.Router
	server    *http.Server
	log       *logger.Logger
}

// NewServer creates a new API server listening on addr
func NewServer(generator *datasource.Generator, addr string, log *logger.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{
		generator: generator,
		router:    router,
		log:       log,
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.AccessLog(log))
	router.Use(middleware.Recover(log))

	router.HandleFunc(datasource.ForecastPath, s.handleGetForecast).Methods(http.MethodGet)
	router.HandleFunc("/api/health", s.handleHealthCheck).Methods(http.MethodGet)

	// mux skips middleware for these, so wrap them explicitly
	router.NotFoundHandler = middleware.RequestID(middleware.AccessLog(log)(http.HandlerFunc(handleNotFound)))
	router.MethodNotAllowedHandler = middleware.RequestID(middleware.AccessLog(log)(http.HandlerFunc(handleMethodNotAllowed)))

	return s
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins the API server
func (s *Server) Start() error {
	s.log.Infof("Starting forecast service on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleGetForecast returns a freshly generated forecast.
// An optional ?days= overrides the configured length, capped at MaxForecastDays.
func (s *Server) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	days := 0
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	// Generation cannot fail; any fault is a panic handled by Recover
	forecast, _ := s.generator.FetchForecast(r.Context(), days)

	writeJSON(w, http.StatusOK, forecast)
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": fmt.Sprintf("not found: %s", r.URL.Path),
	})
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
