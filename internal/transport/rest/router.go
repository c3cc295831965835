package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/auth"
	"github.com/frahmantamala/salary-simulator/internal/metrics"
	"github.com/frahmantamala/salary-simulator/internal/settings"
	"github.com/frahmantamala/salary-simulator/internal/simulation"
	"github.com/frahmantamala/salary-simulator/internal/transport"
	"github.com/frahmantamala/salary-simulator/internal/transport/middleware"
	"github.com/frahmantamala/salary-simulator/internal/transport/swagger"
	"github.com/frahmantamala/salary-simulator/internal/user"
	"github.com/frahmantamala/salary-simulator/internal/web"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Dependencies carries everything the router mounts. Metrics and OpenAPI
// are optional.
type Dependencies struct {
	Base              *transport.BaseHandler
	Sessions          *auth.SessionManager
	DB                Pinger
	AuthHandler       *auth.Handler
	UserHandler       *user.Handler
	SimulationHandler *simulation.Handler
	SettingsHandler   *settings.Handler
	Metrics           *metrics.Metrics
	MetricsPath       string
	OpenAPI           http.Handler
	Logger            *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	healthHandler := NewHealthHandler(deps.Base, deps.DB)

	// Apply global middleware
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.TraceID)
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger, deps.Base))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.InstrumentHandler)
	}
	router.Use(deps.Sessions.LoadUser)
	router.Use(middleware.UserContext)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		deps.Base.RenderError(w, r, internal.ErrPageNotFound)
	})

	router.Handle("/static/*", http.StripPrefix("/static/", web.Static()))

	if deps.Metrics != nil {
		router.Method(http.MethodGet, deps.MetricsPath, deps.Metrics.Handler())
	}
	if deps.OpenAPI != nil {
		router.Method(http.MethodGet, swagger.SpecPath, deps.OpenAPI)
		router.Handle("/swagger/*", swagger.Handler())
	}

	// Public pages
	router.Get("/", deps.SimulationHandler.Home)
	router.Get("/join", deps.AuthHandler.JoinPage)
	router.Post("/join", deps.AuthHandler.Join)
	router.Get("/login", deps.AuthHandler.LoginPage)
	router.Post("/login", deps.AuthHandler.Login)
	router.Post("/logout", deps.AuthHandler.Logout)

	// Pages that require a session
	router.Group(func(pr chi.Router) {
		pr.Use(deps.Sessions.RequireUser)

		pr.Route("/simulations", func(sr chi.Router) {
			sr.Get("/", deps.SimulationHandler.List)
			sr.Post("/", deps.SimulationHandler.ListAction)
			sr.Get("/new", deps.SimulationHandler.New)
			sr.Post("/new", deps.SimulationHandler.Create)
			sr.Get("/{id}", deps.SimulationHandler.Detail)
			sr.Get("/edit/{id}", deps.SimulationHandler.Edit)
			sr.Post("/edit/{id}", deps.SimulationHandler.EditAction)
		})

		pr.Group(func(ar chi.Router) {
			ar.Use(middleware.RequireAdmin(deps.Base))
			ar.Get("/settings", deps.SettingsHandler.Show)
			ar.Post("/settings", deps.SettingsHandler.Action)
		})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Group(func(pr chi.Router) {
			pr.Use(deps.Sessions.RequireUser)
			pr.Get("/users/me", deps.UserHandler.GetCurrentUser)
		})
	})
}
