package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kenniferm/eunoia-backend/internal/action"
	"github.com/kenniferm/eunoia-backend/internal/api"
	"github.com/kenniferm/eunoia-backend/internal/callhub"
	"github.com/kenniferm/eunoia-backend/internal/config"
	"github.com/kenniferm/eunoia-backend/internal/llm"
	"github.com/kenniferm/eunoia-backend/internal/policy"
	"github.com/kenniferm/eunoia-backend/internal/responder"
	"github.com/kenniferm/eunoia-backend/internal/store"
	"github.com/kenniferm/eunoia-backend/internal/telephony"
	"github.com/kenniferm/eunoia-backend/internal/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting call bridge...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("LLM URL: %s (model %s)", cfg.LLMBaseURL, cfg.LLMModel)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize completion client
	completionClient := llm.NewCompletionClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)

	// Initialize telephony client
	telephonyClient := telephony.NewClient(cfg.TelephonyBaseURL, cfg.TelephonyAPIKey, cfg.TransferNumber, 30*time.Second)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize function executors
	registry := action.NewRegistry()
	action.RegisterBuiltins(registry, db)

	// Initialize call channel hub and session factory
	hub := callhub.NewHub()
	sessions := responder.NewFactory(cfg, completionClient, registry, policyEngine, telephonyClient, db)

	// Initialize handlers
	wsServer := ws.NewServer(cfg, hub, sessions)
	h := api.NewHandler(db, telephonyClient, hub, cfg)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	wsServer.RegisterRoutes(e)
	h.RegisterRoutes(e)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Call bridge started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down call bridge...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Call bridge stopped")
}
