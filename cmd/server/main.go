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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memory-duel/internal/config"
	"memory-duel/internal/logging"
	"memory-duel/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	st := openStore(cfg, logger)
	if closer, ok := st.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	server := NewServer(cfg, st, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
	server.closeSessions()
}

// openStore connects to Redis when REDIS_URL is set and falls back to memory
// otherwise, or when Redis is unreachable.
func openStore(cfg *config.Config, logger *zap.Logger) store.Store {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using memory store")
		return store.NewMemoryStore()
	}

	st, err := store.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		logger.Warn("failed to connect to Redis, using memory store", zap.Error(err))
		return store.NewMemoryStore()
	}
	logger.Info("connected to Redis")
	return st
}
