package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/skycrm-backend/internal/adapters/primary/http"
	mw "github.com/lorrc/skycrm-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/skycrm-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/skycrm-backend/internal/adapters/secondary/email"
	"github.com/lorrc/skycrm-backend/internal/adapters/secondary/postgres"
	"github.com/lorrc/skycrm-backend/internal/auth"
	"github.com/lorrc/skycrm-backend/internal/config"
	"github.com/lorrc/skycrm-backend/internal/core/ports"
	"github.com/lorrc/skycrm-backend/internal/core/services"
	"github.com/lorrc/skycrm-backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	// Cancelled on shutdown; owns the hub loop and limiter cleanup.
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	// 3. Initialize Database Pool
	pool, err := openPool(appCtx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg.Database); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	var (
		hub       *websocket.Hub
		publisher ports.RealtimePublisher = websocket.NopPublisher{}
	)
	if cfg.WebSocket.Enabled {
		hub = websocket.NewHub(logger, hubConfig(cfg.WebSocket))
		go hub.Run(appCtx)
		publisher = hub
	} else {
		logger.Warn("realtime hub disabled, notifications will be dropped")
	}

	// 5. Initialize Rate Limiters
	var generalRateLimiter, authRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(appCtx, mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
			KeyFunc:           mw.UserKey,
		})

		authRateLimiter = mw.NewRateLimiter(appCtx, mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.AuthRPS,
			BurstSize:         cfg.RateLimit.AuthBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
	}

	// 6. Dependency Injection (Wiring the Hexagon)
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Repositories (Secondary Adapters)
	txManager := postgres.NewTransactionManager(pool)
	tenantRepo := postgres.NewTenantRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)

	mailer := email.NewLogMailer(userRepo, logger)

	// Services (Core)
	notifier := services.NewNotificationService(publisher, mailer, logger)
	authService := services.NewAuthService(tenantRepo, userRepo, txManager, logger)
	taskService := services.NewTaskService(taskRepo, userRepo, customerRepo, notifier, logger)
	customerService := services.NewCustomerService(customerRepo, notifier, logger)
	invoiceService := services.NewInvoiceService(invoiceRepo, customerRepo, txManager, notifier, logger)
	announcementService := services.NewAnnouncementService(publisher, logger)
	ticketService := services.NewTicketService(ticketRepo, userRepo, notifier, logger)
	commentService := services.NewCommentService(commentRepo, ticketService, notifier, logger)

	// Handlers (Primary Adapters)
	routes := httpAdapter.RouterConfig{
		Logger:         logger,
		Verifier:       tokenManager,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		GeneralLimiter: generalRateLimiter,
		AuthLimiter:    authRateLimiter,
		Auth:           httpAdapter.NewAuthHandler(authService, tokenManager, errorHandler, logger),
		Tasks:          httpAdapter.NewTaskHandler(taskService, errorHandler, logger),
		Customers:      httpAdapter.NewCustomerHandler(customerService, errorHandler, logger),
		Invoices:       httpAdapter.NewInvoiceHandler(invoiceService, errorHandler, logger),
		Tickets: httpAdapter.NewTicketHandler(ticketService,
			httpAdapter.NewCommentHandler(commentService, errorHandler, logger), errorHandler, logger),
		Announcements:  httpAdapter.NewAnnouncementHandler(announcementService, errorHandler, logger),
	}

	// Interfaces stay nil, not typed-nil, when the hub is off.
	if hub != nil {
		gate := websocket.NewGate(tokenManager, logger)
		routes.WebSocket = httpAdapter.NewWebSocketHandler(hub, gate, cfg, logger)
		routes.Health = httpAdapter.NewHealthHandler(pool, hub, cfg.App.Version)
		routes.Me = httpAdapter.NewMeHandler(authService, hub, errorHandler, logger)
	} else {
		routes.Health = httpAdapter.NewHealthHandler(pool, nil, cfg.App.Version)
		routes.Me = httpAdapter.NewMeHandler(authService, nil, errorHandler, logger)
	}

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      httpAdapter.NewRouter(routes),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown; stopping
	// the hub closes them.
	stopApp()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func runMigrations(cfg config.DatabaseConfig) error {
	path, err := filepath.Abs(cfg.MigrationsPath)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+path, cfg.URL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func hubConfig(cfg config.WebSocketConfig) websocket.HubConfig {
	hc := websocket.DefaultHubConfig()
	hc.SendBufferSize = cfg.SendBufferSize
	hc.WriteWait = cfg.WriteWait
	hc.PongWait = cfg.PongWait
	hc.PingInterval = cfg.PingInterval
	hc.MaxMessageSize = cfg.MaxMessageSize
	hc.EventsPerSecond = cfg.EventsPerSecond
	hc.EventsBurst = cfg.EventsBurst
	return hc
}
