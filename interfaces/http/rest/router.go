package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"conceptbase/application/commands/bus"
	querybus "conceptbase/application/queries/bus"
	"conceptbase/infrastructure/config"
	"conceptbase/interfaces/http/rest/handlers"
	"conceptbase/interfaces/http/rest/middleware"
	"conceptbase/pkg/auth"
	"conceptbase/pkg/observability"
)

// Router wires the HTTP surface around the operations façade.
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	jwtValidator *auth.JWTValidator
	metrics      *observability.Metrics
	config       *config.Config
	logger       *zap.Logger
}

// NewRouter creates a router.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	jwtValidator *auth.JWTValidator,
	metrics *observability.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		jwtValidator: jwtValidator,
		metrics:      metrics,
		config:       cfg,
		logger:       logger,
	}
}

// Setup configures all routes and middleware. Mutating routes require a
// bearer token; queries are open.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))

	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	authenticate := middleware.Authenticate(rt.jwtValidator)

	router.Route("/api/v1", func(r chi.Router) {
		conceptHandler := handlers.NewConceptHandler(rt.commandBus, rt.queryBus, rt.logger)
		r.Route("/concepts", func(r chi.Router) {
			r.Get("/", conceptHandler.QueryConcepts)
			r.Get("/{conceptID}", conceptHandler.GetConcept)
			r.With(authenticate).Post("/", conceptHandler.CreateConcept)
			r.With(authenticate).Put("/{conceptID}", conceptHandler.UpdateConcept)
		})

		typeHandler := handlers.NewRelationshipTypeHandler(rt.commandBus, rt.queryBus, rt.logger)
		r.Route("/relationship-types", func(r chi.Router) {
			r.Get("/{typeID}", typeHandler.GetRelationshipType)
			r.With(authenticate).Post("/", typeHandler.CreateRelationshipType)
			r.With(authenticate).Post("/{typeID}/deprecate", typeHandler.DeprecateRelationshipType)
		})

		relationshipHandler := handlers.NewRelationshipHandler(rt.commandBus, rt.queryBus, rt.logger)
		r.Route("/relationships", func(r chi.Router) {
			r.Get("/", relationshipHandler.QueryRelationships)
			r.Get("/{relationshipID}", relationshipHandler.GetRelationship)
			r.With(authenticate).Post("/", relationshipHandler.AssertRelationship)
			r.With(authenticate).Put("/{relationshipID}", relationshipHandler.UpdateRelationship)
		})

		inferenceHandler := handlers.NewInferenceHandler(rt.queryBus, rt.metrics, rt.logger)
		r.Post("/infer", inferenceHandler.Infer)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func (rt *Router) readinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
