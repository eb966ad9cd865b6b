package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	_ "github.com/lib/pq"

	httpapi "bloodbridge-backend/internal/api/http"
	"bloodbridge-backend/internal/config"
	"bloodbridge-backend/internal/database"
	"bloodbridge-backend/internal/identity"
	"bloodbridge-backend/internal/jobs"
	"bloodbridge-backend/internal/logger"
	"bloodbridge-backend/internal/metrics"
	"bloodbridge-backend/internal/repository/postgres"
	"bloodbridge-backend/internal/scheduler"
	"bloodbridge-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting BloodBridge Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Identity configuration", "provider", cfg.Identity.Provider)

	// Run migrations
	if cfg.Database.Migrate {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.GetDatabaseConnectionString()); err != nil {
			logger.Error("Failed to run migrations", "error", err)
			log.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("Database migrations applied")
	}

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Identity Provider
	provider, err := buildProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize identity provider", "error", err)
		log.Fatalf("Failed to initialize identity provider: %v", err)
	}

	// Initialize Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Initialize Services
	emailSvc := service.NewEmailService(
		cfg.Email.SendGridAPIKey,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
		cfg.Email.Enabled,
	)
	authSvc := service.NewAuthService(store.UserRepository, provider)
	userSvc := service.NewUserService(store.UserRepository, store.RequestRepository, provider, emailSvc)
	requestSvc := service.NewRequestService(store.RequestRepository, emailSvc)

	// Initialize HTTP router
	router := httpapi.NewRouter(httpapi.RouterDeps{
		AuthSvc:        authSvc,
		UserSvc:        userSvc,
		RequestSvc:     requestSvc,
		Provider:       provider,
		Collector:      collector,
		Registry:       registry,
		DB:             db,
		LoginPerMinute: cfg.RateLimit.LoginPerMinute,
		LoginBurst:     cfg.RateLimit.LoginBurst,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.RequestTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start in-process scheduler for the background jobs
	jobRunner := jobs.NewJobRunner(db, store, provider, emailSvc, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

// buildProvider selects the identity provider from configuration.
func buildProvider(cfg *config.Config) (identity.Provider, error) {
	switch cfg.Identity.Provider {
	case "firebase":
		return identity.NewFirebaseProvider(context.Background(), identity.FirebaseOptions{
			ProjectID:       cfg.Identity.ProjectID,
			CredentialsFile: cfg.Identity.CredentialsFile,
			WebAPIKey:       cfg.Identity.WebAPIKey,
		})
	default:
		logger.Info("Using local identity provider")
		return identity.NewLocalProvider(cfg.Identity.JWTSecret), nil
	}
}
