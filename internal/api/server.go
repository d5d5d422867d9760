package api

import (
	"net/http"
	"time"

	"github.com/futig/virtual-ta/internal/api/docs"
	healthapi "github.com/futig/virtual-ta/internal/api/health"
	"github.com/futig/virtual-ta/internal/api/middleware"
	queryapi "github.com/futig/virtual-ta/internal/api/query"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

var corsOptions = cors.Options{
	AllowedOrigins:       []string{"*"},
	AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	AllowedHeaders:       []string{"Content-Type", "Authorization", "X-Request-ID"},
	MaxAge:               300,
	OptionsSuccessStatus: http.StatusNoContent,
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	queryHandler *queryapi.Handler,
	healthHandler *healthapi.Handler,
	requestTimeout time.Duration,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)               // Recover from panics
	r.Use(chimiddleware.RequestID)               // Add request ID
	r.Use(middleware.Logger(logger))             // Log requests
	r.Use(cors.Handler(corsOptions))             // Handle CORS
	r.Use(chimiddleware.Timeout(requestTimeout)) // Request deadline

	r.Get("/health", healthHandler.Health)

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	queryapi.RegisterRoutes(r, queryHandler)

	return r
}
