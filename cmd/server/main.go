package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eeg-replay/internal/broadcast"
	"eeg-replay/internal/platform/config"
	"eeg-replay/internal/platform/logger"
	"eeg-replay/internal/platform/metrics"
	"eeg-replay/internal/replay"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
)

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "3000")
	dataDir := config.GetEnv("DATA_DIR", "eeg-score")
	staticDir := config.GetEnv("STATIC_DIR", "public")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	allowedOrigins := config.GetEnvList("ALLOWED_ORIGINS", []string{"*"})
	sendBuffer := config.GetEnvInt("WS_SEND_BUFFER", broadcast.DefaultSendBuffer)
	shutdownTimeout := config.GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	log := logger.New(logLevel, logFormat)

	clock := clockwork.NewRealClock()
	met := metrics.New()
	hub := broadcast.NewHub(clock, log, met, sendBuffer)
	sched := replay.NewScheduler(hub, clock, log, met)
	svc := replay.NewService(replay.NewDirStore(dataDir), sched, log)
	h := replay.NewHandler(svc, hub, clock, log, met, allowedOrigins)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() {
			met.SetSubscribers(hub.Count())
			met.SetStreaming(sched.Streaming())
		}).ServeHTTP(w, r)
	})
	h.Mount(r)
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"data_dir", dataDir,
		"static_dir", staticDir,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping stream and draining connections")

	sched.Close()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
