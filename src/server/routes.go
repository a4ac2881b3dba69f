package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the full router. Exposed so tests can drive the API
// without a listener.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.handleHealth)

		api.Get("/datasets", s.handleListDatasets)
		api.Post("/datasets/rescan", s.handleRescan)
		api.Post("/datasets/select", s.handleSelect)
		api.Get("/datasets/active", s.handleActive)

		api.Get("/columns", s.handleColumns)

		api.Route("/descriptive", func(dr chi.Router) {
			dr.Get("/shape", s.handleShape)
			dr.Get("/info", s.handleInfo)
			dr.Get("/numerical", s.handleNumerical)
			dr.Get("/categorical", s.handleCategorical)
			dr.Get("/unique-counts", s.handleUniqueCounts)
			dr.Get("/frequency", s.handleFrequency)
			dr.Post("/crosstab", s.handleCrosstab)
			dr.Post("/filter", s.handleFilter)
			dr.Get("/records", s.handleRecords)
		})

		api.Post("/plots/dashboard", s.handleDashboard)
		api.Get("/logs/stream", s.handleLogStream)
	})

	r.Get("/", s.handleIndex)
	return r
}
