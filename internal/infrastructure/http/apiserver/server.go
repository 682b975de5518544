// Package apiserver provides the JSON API HTTP server.
package apiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/config"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/http/handlers"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/http/middleware"
	"github.com/daidai-0318/nanimeshi-web/internal/infrastructure/monitoring"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/inbound"
	"github.com/daidai-0318/nanimeshi-web/internal/ports/outbound"
)

// APIServer serves the JSON API. Every route except settings, health,
// and metrics sits behind the credential gate.
type APIServer struct {
	config         *config.Config
	logger         *zap.Logger
	server         *http.Server
	router         *chi.Mux
	consultService inbound.ConsultService
	mealService    inbound.MealService
	credentials    outbound.CredentialRepository
	preferences    outbound.PreferenceRepository
	favorites      outbound.FavoriteRepository
	shopping       outbound.ShoppingListRepository
	metrics        *monitoring.Metrics
}

// NewAPIServer creates a new API server instance
func NewAPIServer(
	cfg *config.Config,
	log *zap.Logger,
	consultService inbound.ConsultService,
	mealService inbound.MealService,
	credentials outbound.CredentialRepository,
	preferences outbound.PreferenceRepository,
	favorites outbound.FavoriteRepository,
	shopping outbound.ShoppingListRepository,
	metrics *monitoring.Metrics,
) *APIServer {
	server := &APIServer{
		config:         cfg,
		logger:         log,
		consultService: consultService,
		mealService:    mealService,
		credentials:    credentials,
		preferences:    preferences,
		favorites:      favorites,
		shopping:       shopping,
		metrics:        metrics,
	}

	server.router = server.setupRoutes()
	server.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.router,
		// The write timeout must cover a full provider round trip.
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server
}

// setupRoutes configures the JSON API routes
func (s *APIServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	r.Use(middleware.CORS())
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.JSONOnly())

	r.Get("/health", s.handleHealthCheck)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		s.setupAPIV1Routes(r)
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *APIServer) setupAPIV1Routes(r chi.Router) {
	consultH := handlers.NewConsultHandlers(s.consultService, s.logger)
	mealH := handlers.NewMealHandlers(s.mealService, s.logger)
	pantryH := handlers.NewPantryHandlers(s.favorites, s.shopping, s.logger)
	settingsH := handlers.NewSettingsHandlers(s.credentials, s.preferences, s.logger)

	// Settings stay outside the gate so the credential can be supplied.
	r.Route("/settings", func(r chi.Router) {
		r.Get("/credential", settingsH.CredentialStatus)
		r.Put("/credential", settingsH.SetCredential)
		r.Delete("/credential", settingsH.RemoveCredential)
		r.Get("/theme", settingsH.Theme)
		r.Put("/theme", settingsH.SetTheme)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCredential(s.credentials))

		r.Post("/consult", consultH.Consult)
		r.Post("/recipes/chat", consultH.Chat)

		r.Route("/meals", func(r chi.Router) {
			r.Post("/", mealH.LogCooked)
			r.Post("/manual", mealH.LogManual)
			r.Get("/", mealH.List)
			r.Get("/report", mealH.WeeklyReport)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", pantryH.ListFavorites)
			r.Post("/", pantryH.AddFavorite)
			r.Delete("/{id}", pantryH.RemoveFavorite)
		})

		r.Route("/shopping", func(r chi.Router) {
			r.Get("/", pantryH.ListShoppingItems)
			r.Post("/", pantryH.AddShoppingItems)
			r.Post("/{id}/toggle", pantryH.ToggleShoppingItem)
			r.Delete("/{id}", pantryH.RemoveShoppingItem)
			r.Delete("/", pantryH.ClearShoppingList)
		})
	})
}

// Start starts the API HTTP server
func (s *APIServer) Start() error {
	s.logger.Info("Starting JSON API server",
		zap.String("address", s.server.Addr),
	)
	return s.server.ListenAndServe()
}

// Server returns the underlying HTTP server instance
func (s *APIServer) Server() *http.Server {
	return s.server
}

// Router returns the router, used by handler tests.
func (s *APIServer) Router() http.Handler {
	return s.router
}

// Shutdown gracefully shuts down the API server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}

// handleHealthCheck provides the health check endpoint
func (s *APIServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"service":   s.config.App.Name,
		"version":   s.config.App.Version,
		"timestamp": time.Now().Unix(),
	})
}
