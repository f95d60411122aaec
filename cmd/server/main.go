package main

import (
	"alcyxob/flexplan/internal/api"
	"alcyxob/flexplan/internal/config"
	"alcyxob/flexplan/internal/generation"
	"alcyxob/flexplan/internal/metrics"
	"alcyxob/flexplan/internal/repository/memory"
	"alcyxob/flexplan/internal/service"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"
)

// @title FlexPlan API
// @version 1.0
// @description Generates, imports and revises structured workout plans.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	log.Println("Starting FlexPlan Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if cfg.Gemini.APIKey == "" {
		log.Fatalf("FATAL: GEMINI_API_KEY is not set")
	}
	if cfg.JWT.Secret == "" {
		log.Fatalf("FATAL: JWT_SECRET is not set")
	}
	log.Println("Configuration loaded.")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// --- Generation Client ---
	log.Printf("Initializing Gemini client (model %s)...", cfg.Gemini.Model)
	gemini, err := generation.NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Gemini client: %v", err)
	}
	generator := generation.Instrumented(gemini, appMetrics)

	// --- Initialize Repositories ---
	sessionRepo := memory.NewSessionRepository[*service.Session]()

	// --- Initialize Services ---
	log.Println("Initializing services...")
	tokenService := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration)
	planService := service.NewPlanService(generator, appMetrics)
	sessionService := service.NewSessionService(sessionRepo, planService, tokenService, appMetrics, cfg.Session.IdleTimeout)

	go sessionService.RunSweeper(ctx, cfg.Session.SweepInterval)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, tokenService, sessionService, cfg.RateLimit,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stop()

	// In-flight generation calls get a few seconds to finish.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
