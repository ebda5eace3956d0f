package server

import (
	"net/http"

	"github.com/cloo-solutions/concierge/internal/api/handlers"
	"github.com/cloo-solutions/concierge/internal/api/middleware"
	"github.com/cloo-solutions/concierge/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	ChatHandler      *handlers.ChatHandler
	KnowledgeHandler *handlers.KnowledgeHandler
	MetricsEnabled   bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	// Outside Sentry so its re-panic ends here as a 500.
	r.Use(chimw.Recoverer)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)
	r.Use(middleware.MaxBodyBytes(MaxBodyBytes))

	r.Get("/health", handlers.Health)

	if cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", cfg.ChatHandler.Chat)

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/", cfg.KnowledgeHandler.List)
			r.Get("/categories", cfg.KnowledgeHandler.Categories)
			r.Get("/{id}", cfg.KnowledgeHandler.Get)
		})
	})

	return r
}
