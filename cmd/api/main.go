package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orbit/internal/advisor"
	"orbit/internal/config"
	"orbit/internal/database"
	"orbit/internal/logger"
	"orbit/internal/mailer"
	"orbit/internal/middleware"
	"orbit/internal/server"
	"orbit/internal/services"
	"orbit/internal/validator"
)

//go:generate swag init --dir ../../ --generalInfo cmd/api/main.go --output ../../internal/docs --outputTypes go --parseInternal

// @title           Orbit API
// @version         1.0
// @description     Orbit keeps a personal month-by-month ledger of income and expenses, category spending shields and a money checkup advisor.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:5000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	sender := mailer.New(mailer.Config{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		Username: appConfig.SMTPUsername,
		Password: appConfig.SMTPPassword,
		From:     appConfig.MailFrom,
	})
	if appConfig.SMTPHost == "" {
		log.Warn("SMTP_HOST is not set; password reset emails are disabled")
	}

	var coach *advisor.Advisor
	if appConfig.GeminiAPIKey != "" {
		provider, err := advisor.NewGeminiProvider(context.Background(), appConfig.GeminiBaseURL, appConfig.GeminiAPIKey,
			&http.Client{Timeout: appConfig.AdvisorTimeout})
		if err != nil {
			return fmt.Errorf("failed to create advisor provider: %w", err)
		}
		coach = advisor.New(provider, appConfig.AdvisorModel, appConfig.AdvisorFallback)
	} else {
		log.Warn("GEMINI_API_KEY is not set; the advisor is offline")
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db, sender, services.UserServiceConfig{
		BcryptCost:  appConfig.BcryptCost,
		FrontendURL: appConfig.FrontendURL,
	})
	ledgerService := services.NewLedgerService(db)
	budgetService := services.NewBudgetService(db, ledgerService)
	advisorService := services.NewAdvisorService(coach, ledgerService)

	router := server.NewRouter(server.Services{
		Users:   userService,
		Ledgers: ledgerService,
		Budgets: budgetService,
		Advisor: advisorService,
	}, server.Options{
		Tokens:     middleware.NewTokenManager(appConfig.JWTSecret, appConfig.JWTExpirationDur),
		CORSOrigin: appConfig.CORSOrigin,
		EnableDocs: appConfig.EnableDocs,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Orbit backend server on port %s", appConfig.Port)
		if appConfig.EnableDocs {
			log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
