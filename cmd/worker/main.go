package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/therapy-scheduler/internal/config"
	"github.com/jwalitptl/therapy-scheduler/internal/email"
	"github.com/jwalitptl/therapy-scheduler/internal/service/notification"
	"github.com/jwalitptl/therapy-scheduler/pkg/logger"
	"github.com/jwalitptl/therapy-scheduler/pkg/messaging"
	"github.com/jwalitptl/therapy-scheduler/pkg/messaging/redis"
	"github.com/jwalitptl/therapy-scheduler/pkg/metrics"
)

const healthAddr = ":8081"

func setupHealthCheck(log *logger.Logger, registry *prom.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "health check server failed")
		}
	}()
	return srv
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "failed to load config")
	}
	smtpCfg, err := config.LoadSMTPConfig()
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "failed to load smtp config")
	}

	log := logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Console: cfg.Log.Console,
	}).WithFields(map[string]interface{}{"component": "notifier"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	broker := redis.NewRedisBroker(redisClient, log.Zerolog())
	defer broker.Close()

	registry := prom.NewRegistry()
	notifier := notification.NewService(
		email.NewSMTPService(smtpCfg),
		metrics.NewMetrics(registry, cfg.Monitoring.Namespace, "notifier"),
		log,
	)

	health := setupHealthCheck(log, registry)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = health.Shutdown(shutdownCtx)
	}()

	log.Info("worker started", "channel", cfg.Redis.Channel)
	if err := messaging.Consume(ctx, broker, cfg.Redis.Channel, log.Zerolog(), notifier.Handle); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(err, "consumer stopped")
	}
	log.Info("worker shutting down")
}
