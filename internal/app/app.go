package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"stocksentiment/internal/acquisition"
	"stocksentiment/internal/config"
	apperrors "stocksentiment/internal/errors"
	"stocksentiment/internal/infrastructure"
	customMiddleware "stocksentiment/internal/middleware"
	"stocksentiment/internal/operations"
	handlers "stocksentiment/internal/transport/http"
	"stocksentiment/pkg/contracts"
)

// Options overrides parts of the default wiring
type Options struct {
	// ConfigPath is the YAML file to load; empty searches the default locations
	ConfigPath string

	// Optional acquisition sources; nil selects the configured HTTP clients
	Prices acquisition.PriceFetcher
	Tweets acquisition.TweetSource
}

// Runtime is the wiring shared by the CLIs and the web server
type Runtime struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	OTel    *infrastructure.OTelProviders
	Manager *operations.Manager
}

// NewRuntime loads the configuration, installs the global logger and builds
// the step pipeline
func NewRuntime(opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewRuntimeFromConfig(cfg, logger, opts)
}

// NewRuntimeFromConfig builds the runtime from an already loaded configuration
func NewRuntimeFromConfig(cfg *config.Config, logger *slog.Logger, opts Options) (*Runtime, error) {
	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	registry, err := operations.NewPipelineRegistry(operations.Dependencies{
		Config:  cfg,
		Paths:   paths,
		Metrics: providers.Metrics,
		Logger:  logger,
		Prices:  opts.Prices,
		Tweets:  opts.Tweets,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register pipeline steps: %w", err)
	}

	manager := operations.NewManager(registry, operations.NewConfig(),
		operations.NewOperationTracer(providers.Metrics), logger)

	return &Runtime{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		OTel:    providers,
		Manager: manager,
	}, nil
}

// Close flushes telemetry and closes the log file
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.OTel != nil {
		if err := rt.OTel.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Application is the web server
type Application struct {
	*Runtime
	Router *chi.Mux
	Server *http.Server

	// operations started over HTTP run under opsCtx
	opsCtx    context.Context
	cancelOps context.CancelFunc
}

// NewApplication creates the web application
func NewApplication(opts Options) (*Application, error) {
	rt, err := NewRuntime(opts)
	if err != nil {
		return nil, err
	}
	return NewApplicationFromRuntime(rt), nil
}

// NewApplicationFromRuntime wires the router and server around rt
func NewApplicationFromRuntime(rt *Runtime) *Application {
	opsCtx, cancelOps := context.WithCancel(context.Background())
	a := &Application{
		Runtime:   rt,
		opsCtx:    opsCtx,
		cancelOps: cancelOps,
	}
	a.setupRouter()
	a.createServer()
	return a
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID → RealIP → OTel → Logger → Recoverer
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, false)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTel).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(errorHandler.Recoverer)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout))

			health := handlers.NewHealthHandler(a.Paths, a.Manager, a.Logger)
			r.Get("/health", health.HealthCheck)
			r.Get("/version", health.Version)

			r.Mount("/corpora", handlers.NewCorpusHandler(a.Paths, errorHandler, a.Logger).Routes())
		})

		r.Group(func(r chi.Router) {
			if a.Config.Server.OperationRPS > 0 {
				r.Use(customMiddleware.NewRateLimiter(
					a.Config.Server.OperationRPS,
					a.Config.Server.OperationBurst,
					a.Logger,
				).Handler)
			}
			r.Mount("/operations", handlers.NewOperationsHandler(a.opsCtx, a.Manager, errorHandler, a.Logger).Routes())
		})
	})

	if a.OTel.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTel.PrometheusHTTP)
	}

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts serving in the background; a listener failure calls cancel
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("version", contracts.GetFullVersionString()),
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_dir", a.Paths.DataDir))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop shuts the server down, cancels a running operation and waits for it
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.Manager.Running() {
		a.Logger.WarnContext(ctx, "Cancelling running operation")
	}
	a.cancelOps()
	a.Manager.Wait()

	if err := a.Close(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error releasing resources", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(context.Background())
}
