package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/therapy-scheduler/internal/handler/prometheus"
	"github.com/jwalitptl/therapy-scheduler/internal/middleware"
	"github.com/jwalitptl/therapy-scheduler/pkg/auth"
	"github.com/jwalitptl/therapy-scheduler/pkg/logger"
)

type routes func(*gin.RouterGroup)

func (f routes) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func newTestRouter(t *testing.T, cfg RouterConfig) (*Router, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService("secret", "scheduler", time.Hour)
	token, err := jwtSvc.GenerateAccessToken("reception-1", "receptionist")
	require.NoError(t, err)

	health := routes(func(rg *gin.RouterGroup) {
		rg.GET("/health/live", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	})
	booking := routes(func(rg *gin.RouterGroup) {
		rg.GET("/rooms", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"subject": c.GetString(middleware.ContextSubject)}) })
	})

	r := NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		health,
		booking,
		prometheus.New(prom.NewRegistry(), "scheduler"),
		logger.Nop(),
		cfg,
	)
	r.Setup()
	return r, token
}

func get(r *Router, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	return w
}

func TestRouterSetup(t *testing.T) {
	r, token := newTestRouter(t, RouterConfig{CORSConfig: middleware.DefaultCORSConfig(nil)})

	w := get(r, "/api/v1/health/live", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	w = get(r, "/api/v1/rooms", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/api/v1/rooms", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reception-1")

	w = get(r, "/api/v1/health/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `scheduler_http_requests_total{method="GET",path="/api/v1/rooms",status="200"} 1`)
}

func TestRouterRateLimit(t *testing.T) {
	r, token := newTestRouter(t, RouterConfig{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/rooms", token).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/api/v1/rooms", token).Code)
}
