package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"safecommute/internal/api/handler"
	"safecommute/internal/common"
	obsMiddleware "safecommute/internal/observability/middleware"
)

func NewRouter(authHandler *handler.AuthHandler, incidentHandler *handler.IncidentHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(obsMiddleware.Metrics)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithText(w, http.StatusOK, "Yarrr! Ahoy there, matey!")
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The wire protocol predates this server: flat paths, POST bodies
	// carrying credentials, no /api/v1 prefix.
	authHandler.RegisterRoutes(r)
	incidentHandler.RegisterRoutes(r)

	return r
}
