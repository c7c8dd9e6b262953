package handler

import (
	"agent-payment-gateway/internal/adapter/http/middleware"
	redisStore "agent-payment-gateway/internal/adapter/storage/redis"
	"agent-payment-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthorizationService
	Registry       ports.WalletRegistry
	WalletRepo     ports.WalletRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	MetricsReg     *prometheus.Registry // nil = metrics endpoint disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus metrics
	if deps.MetricsReg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.MetricsReg, promhttp.HandlerOpts{})))
	}

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Signed agent requests (authenticity verified in the pipeline) ---
	paymentHandler := NewPaymentHandler(deps.AuthSvc)
	payments := v1.Group("/payments")
	{
		payments.POST("/authorize", rl("authorize"), paymentHandler.Authorize)
	}

	// --- Administrative wallet surface (externally issued JWT) ---
	adminAuth := middleware.AdminJWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.Registry, deps.WalletRepo)
	wallets := v1.Group("/wallets", adminAuth)
	{
		wallets.POST("", rl("admin"), walletHandler.Create)
		wallets.GET("/:id", rl("admin"), walletHandler.Get)
		wallets.POST("/:id/transition", rl("admin"), walletHandler.Transition)
	}

	return r
}
