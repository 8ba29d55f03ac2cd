package http

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig selects the optional parts of the router
type RouterConfig struct {
	MetricsEnabled     bool
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	StaticDir          string
}

// NewRouter creates the HTTP router with all routes and middleware
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(RequestID)
	r.Use(Logger)
	if cfg.MetricsEnabled {
		r.Use(Metrics)
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", HealthHandler)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(RateLimit(cfg.RateLimitPerMinute, time.Minute))
		}
		r.Post("/message", h.MessageHandler)
		r.Get("/parcel", h.ParcelHandler)
	})

	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
		}
	}

	return r
}
