package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/salary-simulator/api"
	"github.com/frahmantamala/salary-simulator/internal"
	"github.com/frahmantamala/salary-simulator/internal/auth"
	"github.com/frahmantamala/salary-simulator/internal/core/database"
	"github.com/frahmantamala/salary-simulator/internal/core/events"
	"github.com/frahmantamala/salary-simulator/internal/metrics"
	"github.com/frahmantamala/salary-simulator/internal/settings"
	"github.com/frahmantamala/salary-simulator/internal/simulation"
	"github.com/frahmantamala/salary-simulator/internal/transport"
	"github.com/frahmantamala/salary-simulator/internal/transport/rest"
	"github.com/frahmantamala/salary-simulator/internal/transport/swagger"
	"github.com/frahmantamala/salary-simulator/internal/user"
	"github.com/frahmantamala/salary-simulator/internal/web"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var (
	migrateOnStart bool
	seedOnStart    bool
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server serving the simulator pages and their JSON flavour`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply migrations before serving (always on for sqlite)")
	httpServerCmd.Flags().BoolVar(&seedOnStart, "seed", false, "seed reference data and the demo account before serving")
}

type Dependencies struct {
	Config *internal.Config
	DB     *database.DB
	Router *chi.Mux
	Bus    *events.EventBus
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "base_url", deps.Config.Server.BaseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	// let event handlers started by in-flight requests finish
	deps.Bus.Wait()
	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	ctx := context.Background()
	cfg := deps.Config

	views, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	base := transport.NewBaseHandler(deps.Logger, views)

	var m *metrics.Metrics
	if cfg.Observability.Metrics.Enabled {
		m = metrics.New(cfg.Observability.Metrics.Path)
		m.Subscribe(deps.Bus)
	}

	svc := newServices(deps.DB, cfg.Security, deps.Bus, deps.Logger)
	sessions := auth.NewSessionManager(cfg.Security, svc.Users, base)

	openAPI, err := swagger.SpecHandler(ctx, api.OpenAPI)
	if err != nil {
		return err
	}

	rest.RegisterAllRoutes(deps.Router, rest.Dependencies{
		Base:              base,
		Sessions:          sessions,
		DB:                deps.DB.SQLX,
		AuthHandler:       auth.NewHandler(base, svc.Auth, sessions),
		UserHandler:       user.NewHandler(base, svc.Users),
		SimulationHandler: simulation.NewHandler(base, svc.Simulations, svc.References),
		SettingsHandler:   settings.NewHandler(base, svc.Settings),
		Metrics:           m,
		MetricsPath:       cfg.Observability.Metrics.Path,
		OpenAPI:           openAPI,
		Logger:            deps.Logger,
	})
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, lg, err := bootstrap()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.IsProduction() && !config.Security.SecureCookie {
		lg.Warn("session cookie is not marked Secure in production")
	}

	db, err := openDatabase(config, lg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if migrateOnStart || db.Driver == internal.DriverSQLite {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if seedOnStart {
		if err := seedDatabase(ctx, db, config.Security, lg); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: chi.NewRouter(),
		Bus:    events.NewEventBus(lg),
	}, nil
}
