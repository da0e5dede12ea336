package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/therapy-scheduler/internal/config"
	bookingHandler "github.com/jwalitptl/therapy-scheduler/internal/handler/booking"
	"github.com/jwalitptl/therapy-scheduler/internal/handler/health"
	"github.com/jwalitptl/therapy-scheduler/internal/handler/prometheus"
	"github.com/jwalitptl/therapy-scheduler/internal/middleware"
	"github.com/jwalitptl/therapy-scheduler/internal/repository/postgres"
	"github.com/jwalitptl/therapy-scheduler/internal/router"
	"github.com/jwalitptl/therapy-scheduler/internal/scheduling"
	bookingService "github.com/jwalitptl/therapy-scheduler/internal/service/booking"
	"github.com/jwalitptl/therapy-scheduler/pkg/auth"
	"github.com/jwalitptl/therapy-scheduler/pkg/lock"
	"github.com/jwalitptl/therapy-scheduler/pkg/logger"
	"github.com/jwalitptl/therapy-scheduler/pkg/messaging/redis"
	"github.com/jwalitptl/therapy-scheduler/pkg/metrics"
	"github.com/jwalitptl/therapy-scheduler/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "failed to load configuration")
	}

	log := logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Console: cfg.Log.Console,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := validator.RegisterGin(); err != nil {
		log.Fatal(err, "failed to register validators")
	}

	// Initialize database
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis: booking locks and the event broker share one client
	redisClient, err := redis.NewClient(ctx, cfg.Redis.ToBrokerConfig())
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	broker := redis.NewRedisBroker(redisClient, log.Zerolog())
	defer broker.Close()

	registry := prom.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry, cfg.Monitoring.Namespace, "booking")

	nonWorking, err := cfg.Scheduling.Weekdays()
	if err != nil {
		log.Fatal(err, "invalid scheduling configuration")
	}

	bookingSvc := bookingService.NewService(bookingService.Repositories{
		Therapists:   postgres.NewTherapistRepository(db),
		Rooms:        postgres.NewRoomRepository(db),
		Availability: postgres.NewAvailabilityRepository(db),
		Appointments: postgres.NewAppointmentRepository(db),
	}, lock.NewRedisLocker(redisClient, "lock:booking:"), broker, appMetrics, log, bookingService.Config{
		DefaultTab:         scheduling.Tab(cfg.Scheduling.DefaultTab),
		EnforceGenderMatch: cfg.Scheduling.EnforceGenderMatch,
		NonWorkingDays:     nonWorking,
		AlternativesLimit:  cfg.Scheduling.AlternativesLimit,
		DirectoryCacheTTL:  cfg.Scheduling.DirectoryCacheTTL,
		LockTTL:            cfg.Scheduling.BookingLockTTL,
		Channel:            cfg.Redis.Channel,
	})

	var httpMetrics *prometheus.Handler
	if cfg.Monitoring.PrometheusEnabled {
		httpMetrics = prometheus.New(registry, cfg.Monitoring.Namespace)
	}

	var rateLimit rate.Limit
	if cfg.RateLimit.Enabled {
		rateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}

	gin.SetMode(gin.ReleaseMode)
	r := router.NewRouter(
		middleware.NewAuthMiddleware(auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)),
		health.NewHandler(db, redisClient),
		bookingHandler.NewHandler(bookingSvc),
		httpMetrics,
		log,
		router.RouterConfig{
			RateLimit:      rateLimit,
			RateBurst:      cfg.RateLimit.Burst,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			CORSConfig:     middleware.DefaultCORSConfig(cfg.Server.CORSOrigins),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
