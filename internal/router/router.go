package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/therapy-scheduler/internal/handler/prometheus"
	"github.com/jwalitptl/therapy-scheduler/internal/middleware"
	"github.com/jwalitptl/therapy-scheduler/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	health  Handler
	booking Handler
	metrics *prometheus.Handler
}

type RouterConfig struct {
	// RateLimit of zero disables rate limiting.
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CORSConfig     middleware.CORSConfig
}

// NewRouter builds the engine and its global middleware chain. metrics may be
// nil to run without the Prometheus endpoint.
func NewRouter(
	auth *middleware.AuthMiddleware,
	health Handler,
	booking Handler,
	metrics *prometheus.Handler,
	log *logger.Logger,
	config RouterConfig,
) *Router {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = middleware.DefaultSizeLimitConfig().MaxBodySize
	}

	engine := gin.New()
	r := &Router{
		engine:  engine,
		auth:    auth,
		health:  health,
		booking: booking,
		metrics: metrics,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.ErrorHandler(log),
	)
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}
	engine.Use(
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: config.MaxBodyBytes}),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.health.RegisterRoutes(api)
	if r.metrics != nil {
		api.GET("/health/metrics", r.metrics.Handler())
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.booking.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
