package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"netgraph-backend/pkg/observability"
)

// NewRouter assembles the HTTP surface.
func NewRouter(handler *GraphHandler, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Recoverer(logger))
	r.Use(Instrument(logger, metrics))
	r.Use(Timeout(60 * time.Second))

	r.Get("/health", handler.Health)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/graphs", func(r chi.Router) {
			r.Post("/", handler.IngestGraph)
			r.Get("/", handler.ListGraphs)
			r.Route("/{graphID}", func(r chi.Router) {
				r.Get("/", handler.GetGraph)
				r.Delete("/", handler.DeleteGraph)
				r.Post("/analyze", handler.AnalyzeGraph)
				r.Get("/insights", handler.GetInsights)
			})
		})
		r.Get("/jobs/{jobID}", handler.GetJob)
		r.Post("/keys/rotate", handler.RotateKey)
	})

	return r
}
