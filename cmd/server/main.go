package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ytbridge/internal/gateway"
	"ytbridge/internal/platform/config"
	"ytbridge/internal/platform/logger"
	"ytbridge/internal/platform/metrics"
	"ytbridge/internal/youtube"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	privacy := config.GetEnvBool("PRIVACY_MODE", false)
	opTimeout := config.GetEnvDuration("OP_TIMEOUT", youtube.DefaultOpTimeout)

	log := logger.New(logLevel, logFormat)

	cache := youtube.NewInMemoryPosterCache()
	posters := youtube.NewPosterResolver(&http.Client{Timeout: 10 * time.Second}, cache, log)
	registry := gateway.NewRegistry()
	met := metrics.New()
	h := gateway.NewHandler(registry, posters, log, met, privacy, opTimeout)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveSessions(registry.Count()) }).ServeHTTP(w, r)
	})
	h.Routes(r)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"privacy_mode", privacy,
		"op_timeout", opTimeout.String(),
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
