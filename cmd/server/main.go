package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/accounts/internal/cache"
	"github.com/forgo/accounts/internal/config"
	"github.com/forgo/accounts/internal/database"
	"github.com/forgo/accounts/internal/handler"
	"github.com/forgo/accounts/internal/middleware"
	"github.com/forgo/accounts/internal/model"
	"github.com/forgo/accounts/internal/repository"
	"github.com/forgo/accounts/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging: text for local development, JSON otherwise
	logOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var logHandler slog.Handler = slog.NewJSONHandler(os.Stdout, logOpts)
	if cfg.IsDevelopment() {
		logHandler = slog.NewTextHandler(os.Stdout, logOpts)
	}
	slog.SetDefault(slog.New(logHandler))

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("namespace", cfg.Database.Namespace),
		slog.String("database", cfg.Database.Database),
	)

	// Apply schema
	if cfg.Database.MigrationsDir != "" {
		if err := database.Migrate(ctx, db, cfg.Database.MigrationsDir); err != nil {
			slog.Error("failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Initialize repositories
	var accountRepo repository.AccountStore = repository.NewAccountRepository(db)

	if cfg.Redis.CacheEnabled() {
		rdb, err := cache.NewClient(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Warn("account cache disabled",
				slog.String("addr", cfg.Redis.Addr),
				slog.String("error", err.Error()),
			)
		} else {
			defer func() { _ = rdb.Close() }()
			views := cache.NewViewCache[model.Account](rdb, "accounts:id:", cfg.Redis.TTL)
			accountRepo = repository.NewCachedAccountRepository(accountRepo, views)
			slog.Info("account cache enabled",
				slog.String("addr", cfg.Redis.Addr),
				slog.Duration("ttl", cfg.Redis.TTL),
			)
		}
	}

	// Initialize services
	accountService := service.NewAccountService(service.AccountServiceConfig{
		Repo:       accountRepo,
		BcryptCost: cfg.Security.BcryptCost,
	})

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountService, cfg.Server.StoreTimeout)

	// Setup routes
	mux := http.NewServeMux()
	accountHandler.Register(mux)

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.AccessLog(slog.Default()),
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("addr", server.Addr),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
