package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/whop-boardy/member-directory/handlers"
	"github.com/whop-boardy/member-directory/middleware"
	"github.com/whop-boardy/member-directory/pkg/monitoring"
	"github.com/whop-boardy/member-directory/whop"
)

func main() {
	// Load .env file if it exists (optional - fails silently if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	slog.Info("Starting member directory server initialization")

	shutdownMetrics, err := monitoring.Setup(context.Background(), monitoring.Config{
		ServiceName: "member-directory",
	})
	if err != nil {
		slog.Error("Failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	// Initialize GORM database connection
	dbConfig := NewDatabaseConfig()
	gormDB, err := ConnectGormDB(dbConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	// The enrichment API is optional; without a key all member and company
	// metadata comes from webhook payloads alone.
	var whopAPI whop.API
	if apiKey := os.Getenv("WHOP_API_KEY"); apiKey != "" {
		whopAPI = whop.NewClient(os.Getenv("WHOP_API_URL"), apiKey)
		slog.Info("Enrichment API configured")
	} else {
		slog.Warn("WHOP_API_KEY not set, enrichment disabled")
	}

	// Setup routes
	handler := handlers.NewHandler(gormDB, whopAPI)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":"member-directory","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
	})

	// Debug endpoint
	mux.HandleFunc("/debug", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"debug":"enabled","service":"member-directory","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
	})

	// Prometheus scrape endpoint
	mux.Handle("/metrics", monitoring.Handler())

	// Apply middleware chain
	var root http.Handler = mux
	root = middleware.NewCORSMiddleware()(root)
	root = middleware.SecurityHeaders(root)
	root = monitoring.HTTPMiddleware(root)
	root = middleware.RequestLogging(root)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	addr := ":" + port
	server := &http.Server{
		Addr:         addr,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Member directory server starting", "port", port, "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := shutdownMetrics(ctx); err != nil {
		slog.Warn("Metrics shutdown failed", "error", err)
	}

	slog.Info("Server exited")
}
