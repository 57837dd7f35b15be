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

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/stackplate/internal/server/chat"
	httpapi "github.com/aussiebroadwan/stackplate/internal/server/http"
	"github.com/aussiebroadwan/stackplate/internal/server/mail"
	"github.com/aussiebroadwan/stackplate/internal/server/resetkeys"
	"github.com/aussiebroadwan/stackplate/internal/server/service"
	"github.com/aussiebroadwan/stackplate/internal/server/store"
	"github.com/aussiebroadwan/stackplate/internal/server/store/drivers/postgres"
	"github.com/aussiebroadwan/stackplate/internal/server/store/drivers/sqlite"
	"github.com/aussiebroadwan/stackplate/pkg/cryptox"
	"github.com/aussiebroadwan/stackplate/pkg/jwtx"
	"github.com/aussiebroadwan/stackplate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the server with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	redis     *redis.Client // nil with the in-memory reset store
	resetKeys resetkeys.Store
	codec     *jwtx.HS256Codec

	// Services
	tokenService        *service.TokenService
	authService         *service.AuthService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService
	chatHub             *chat.Hub

	// HTTP server
	server *http.Server
	router *httpapi.Router

	running bool
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "stackplate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  cfg.LogOutput,
		}),
	}

	codec, err := jwtx.NewHS256Codec([]byte(cfg.TokenSecret), cfg.CompanyName, cfg.CompanyDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initResetStore(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired router.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.running = true

	app.logger.Info("server starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Hijacked websocket connections aren't tracked by the server
	app.chatHub.Close()

	if app.running {
		app.housekeepingService.Stop()
		app.running = false
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("server stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL, app.cfg.DatabaseMaxConns)
	default:
		db, err = sqlite.NewStore(sqliteDSN(app.cfg.DatabaseURL), app.cfg.DatabaseMaxConns)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initResetStore picks the in-memory or redis backed reset key store
func (app *Application) initResetStore() error {
	if app.cfg.ResetStore != ResetStoreRedis {
		app.resetKeys = resetkeys.NewMemoryStore()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.redis = client
	app.resetKeys = resetkeys.NewRedisStore(client, app.cfg.ResetKeyTTL)
	app.logger.Info("redis reset key store connected", "addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Codec:      app.codec,
		SessionTTL: app.cfg.SessionTTL,
		AccessTTL:  app.cfg.AccessTTL,
	}

	if app.cfg.SMTP.Host == "" {
		app.logger.Warn("SMTP_HOST not set, password reset mails will fail")
	}

	app.authService = &service.AuthService{
		Store:       app.db,
		Tokens:      app.tokenService,
		Hasher:      cryptox.NewPasswordHasher(app.cfg.PasswordPepper),
		ResetKeys:   app.resetKeys,
		Mailer:      mail.NewSMTPMailer(app.cfg.SMTP),
		ResetWindow: app.cfg.ResetKeyTTL,
		PublicURL:   app.cfg.PublicURL,
		Company:     app.cfg.CompanyName,
		AdminEmails: app.cfg.AdminEmails,
	}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.resetKeys,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.ResetKeyTTL,
	)

	app.chatHub = chat.NewHub(chat.Config{AllowedOrigins: app.cfg.CORSOrigins}, app.logger)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		app.cfg.RateLimits,
		BuildVersion,
		app.db,
		app.resetKeys,
		app.cfg.CORSOrigins,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.UserService = app.userService
	router.ChatHub = app.chatHub
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
