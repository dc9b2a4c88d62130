package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lasttodo/lasttodo/alarm"
	"github.com/lasttodo/lasttodo/api"
	"github.com/lasttodo/lasttodo/auth"
	"github.com/lasttodo/lasttodo/config"
	"github.com/lasttodo/lasttodo/db"
	"github.com/lasttodo/lasttodo/log"
	"github.com/lasttodo/lasttodo/store"
	"github.com/lasttodo/lasttodo/todo"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Get()

	if cfg.LogLevel != "" {
		log.SetLevel(cfg.LogLevel)
		log.Info().Str("level", cfg.LogLevel).Msg("log level set from environment")
	}

	// Initialize database
	_ = db.GetDB()

	if version, err := db.GetCurrentVersion(); err == nil {
		log.Info().Int("version", version).Msg("database schema version")
	}

	// Sweep sessions that expired while the server was down
	if removed, err := db.DeleteExpiredSessions(); err != nil {
		log.Error().Err(err).Msg("failed to delete expired sessions")
	} else if removed > 0 {
		log.Info().Int64("count", removed).Msg("expired sessions removed")
	}

	// Services
	itemStore := store.New()
	scheduler := alarm.NewScheduler(func(payload string) {
		// Display-only: firing never writes back to the store
		log.Info().Str("task", payload).Msg("reminder")
	})
	allocator := todo.NewAllocator(db.RequestCodeStore{})
	identity := auth.NewService()
	manager := todo.NewManager(itemStore, scheduler, allocator, identity)

	// Set Gin to release mode to disable its default debug logging
	// We use our own zerolog-based request logger instead
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinLogger())

	// CORS for development
	if cfg.IsDevelopment() {
		r.Use(corsMiddleware())
	}

	r.SetTrustedProxies(nil)

	// Setup API routes
	api.SetupRoutes(r, api.NewHandlers(identity, manager))

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:     addr,
		Handler:  r,
		ErrorLog: log.StdLogger(zerolog.ErrorLevel),
	}

	// Start server
	go func() {
		log.Info().
			Str("addr", addr).
			Str("env", cfg.Env).
			Msg("server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Tear down session coordinators, then stop pending alarms
	manager.Shutdown()
	scheduler.Stop()

	// Close all live subscriptions
	itemStore.Shutdown()

	// Shutdown server with timeout to close remaining HTTP connections
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	// Close database
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("database close error")
	}

	log.Info().Msg("server stopped")
}

// corsMiddleware creates a CORS middleware for Gin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", c.Request.Header.Get("Origin"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
