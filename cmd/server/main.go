// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/database"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/handlers"
	"github.com/jason-s-yu/uno/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using debug", cfg.LogLevel)
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(lvl)
	}
	if cfg.Env != "dev" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Debugf("shuffle seed %d", seed)
	engine := game.NewUnoGame(rand.New(rand.NewSource(seed)), cfg.HouseRules(), logger)

	opts := []handlers.Option{handlers.WithOriginPatterns(cfg.AllowedOrigins)}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Warnf("action log disabled: %v", err)
		} else {
			defer rdb.Close()
			opts = append(opts, handlers.WithActionLog(cache.NewActionLog(rdb, cfg.QueueName)))
			logger.Infof("Publishing actions to Redis list %q", cfg.QueueName)
		}
	}
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warnf("result store disabled: %v", err)
		} else if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Warnf("result store disabled: %v", err)
			pool.Close()
		} else {
			defer pool.Close()
			opts = append(opts, handlers.WithResultStore(database.NewResultStore(pool)))
			logger.Info("Recording game results to Postgres")
		}
	}

	srv := handlers.NewGameServer(engine, logger, opts...)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(handlers.GameWSHandler(logger, srv)))
	mux.Handle("/health", handlers.HealthHandler())

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		srv.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.Infof("Running on %s", cfg.Addr())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	srv.Wait()
}
