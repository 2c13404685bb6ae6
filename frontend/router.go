package frontend

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"weatherforecast/collector"
	"weatherforecast/logger"
	"weatherforecast/middleware"
)

// NewRouter builds the client's HTTP routes. prober may be nil.
func NewRouter(renderer *Renderer, prober *collector.Prober, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recover(log))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		out := renderer.FetchAndRender(req.Context())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(out.Status)
		w.Write(out.Body)
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		resp := map[string]interface{}{
			"status": "ok",
		}
		if prober != nil {
			resp["upstream"] = prober.Status()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "404 page not found", http.StatusNotFound)
	})

	return r
}
