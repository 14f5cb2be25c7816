package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/ksellami/whatsorder/internal/api/middleware"
	"github.com/ksellami/whatsorder/internal/webhook"
	"github.com/ksellami/whatsorder/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Webhook        *webhook.Handler
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(apimiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Bot is running"))
	})
	r.Get("/voice", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Voice endpoint ready"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.Webhook != nil {
		// Gateways are configured with different callback paths over
		// time; all of them land on the same normalizing handler.
		r.Post("/webhooks/whatsapp", cfg.Webhook.Handle)
		r.Post("/webhooks/whapi", cfg.Webhook.Handle)
		r.Post("/webhooks/ultramsg", cfg.Webhook.Handle)
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
