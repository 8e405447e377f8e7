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
	"time"

	httpapi "github.com/aussiebroadwan/lectern/internal/platform/http"
	"github.com/aussiebroadwan/lectern/internal/platform/service"
	"github.com/aussiebroadwan/lectern/internal/platform/storage"
	"github.com/aussiebroadwan/lectern/internal/platform/store/drivers/sqlite"
	"github.com/aussiebroadwan/lectern/pkg/cryptox"
	"github.com/aussiebroadwan/lectern/pkg/jwtx"
	"github.com/aussiebroadwan/lectern/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	totpIssuer = "Lectern"
)

// Application wires the platform service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      *sqlite.Store
	tokens  *jwtx.Manager
	box     *cryptox.SecretBox
	objects *storage.S3 // nil when document storage is not configured

	authService         *service.AuthService
	mfaService          *service.MFAService
	integrationService  *service.IntegrationService
	documentService     *service.DocumentService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New builds an Application. Missing or malformed secrets are reported here
// rather than on the first request that needs them.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lectern",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	app.tokens = jwtx.NewManager(cfg.TokenConfig())
	app.box = cryptox.NewSecretBox(cfg.EncryptionKey)
	if err := errors.Join(app.tokens.Validate(), app.box.Validate()); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initStorage(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("lectern starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops background work and closes the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down lectern...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("lectern stopped")
	return nil
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initStorage(ctx context.Context) error {
	if !app.cfg.Storage.Enabled() {
		app.logger.Info("document storage disabled")
		return nil
	}

	objects, err := storage.NewS3(ctx, app.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize document storage: %w", err)
	}
	app.objects = objects

	app.logger.Info("document storage enabled", "bucket", objects.Bucket(), "region", app.cfg.Storage.Region)
	return nil
}

func (app *Application) initServices() {
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Box:    app.box,
		Issuer: totpIssuer,
	}
	app.authService = &service.AuthService{
		Store:  app.db,
		Tokens: app.tokens,
		MFA:    app.mfaService,
	}
	app.integrationService = &service.IntegrationService{
		Store: app.db,
		Box:   app.box,
	}
	app.documentService = &service.DocumentService{
		Store:  app.db,
		URLTTL: app.cfg.DocumentURLTTL,
	}
	// A nil *S3 in the interface field would not compare equal to nil.
	if app.objects != nil {
		app.documentService.Storage = app.objects
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		app.box,
		app.db,
		app.cfg.RateLimits,
		BuildVersion,
		app.logger,
	)

	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.IntegrationService = app.integrationService
	router.DocumentService = app.documentService
	if app.objects != nil {
		router.EnableStorage()
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
