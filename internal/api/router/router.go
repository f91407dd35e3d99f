package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/support-agent-router/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/support-agent-router/internal/http/middleware"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Requests       *handlers.RequestHandler
	Tickets        *handlers.TicketHandler
	MetricsHandler http.Handler

	// RateLimitPerSecond <= 0 disables per-client limiting on /v1.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		if cfg.Requests != nil {
			v1.Post("/requests", cfg.Requests.Create)
		}
		if cfg.Tickets != nil {
			v1.Get("/tickets/{ticketID}", cfg.Tickets.Get)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}
