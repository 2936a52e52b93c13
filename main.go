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

	"github.com/xiaot623/gogo/chatrelay/internal/adapter/webhook"
	"github.com/xiaot623/gogo/chatrelay/internal/config"
	"github.com/xiaot623/gogo/chatrelay/internal/repository"
	"github.com/xiaot623/gogo/chatrelay/internal/service"
	server "github.com/xiaot623/gogo/chatrelay/internal/transport/http"
	"github.com/xiaot623/gogo/chatrelay/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting chat relay...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Chunk window: [%d, %d]", cfg.ChunkMin, cfg.ChunkMax)
	if cfg.Mode != webhook.ModeMock && cfg.WebhookURL() == "" {
		log.Printf("WARN: N8N_BASE_URL or N8N_WEBHOOK_PATH is not set; relays will fail with CONFIG_ERROR")
	} else {
		log.Printf("Upstream timeout: %s", cfg.UpstreamTimeout)
	}

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize upstream client
	upstream := webhook.NewUpstream(cfg)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc, err := service.New(db, upstream, cfg, policyEngine)
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}

	e := server.NewServer(svc, cfg)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Chat relay started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down chat relay...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Chat relay stopped")
}
