package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agent-payment-gateway/config"
	httpHandler "agent-payment-gateway/internal/adapter/http/handler"
	"agent-payment-gateway/internal/adapter/resolver"
	pgStorage "agent-payment-gateway/internal/adapter/storage/postgres"
	redisStorage "agent-payment-gateway/internal/adapter/storage/redis"
	"agent-payment-gateway/internal/core/domain"
	"agent-payment-gateway/internal/core/ports"
	"agent-payment-gateway/internal/service"
	"agent-payment-gateway/pkg/logger"
	"agent-payment-gateway/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Agent Payment Gateway")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Initialize repositories
	windows := domain.CalendarUTCWindows{}
	walletRepo := pgStorage.NewWalletRepo(pool)
	spendLedger := pgStorage.NewSpendRepo(pool, windows)
	auditRepo := pgStorage.NewAuditRepository(pool)

	// Initialize Redis stores
	nonceStore := redisStorage.NewNonceStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize metrics
	metricsReg := prometheus.NewRegistry()
	m := metrics.NewMetrics()
	if err := m.Register(metricsReg); err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	// Initialize DID resolver
	keyResolver := resolver.NewHTTPResolver(cfg.Resolver.BaseURL, cfg.Resolver.Timeout)

	// Initialize services
	auditSvc := service.NewAuditService(auditRepo, log)
	registry := service.NewRegistryService(walletRepo, auditSvc, log)
	policySvc := service.NewPolicyService(spendLedger, log)
	sigSvc := service.NewSignatureService(keyResolver, nonceStore, cfg.Auth.ValidityWindow, cfg.Resolver.Timeout, log)
	tokenSvc := service.NewJWTTokenService(cfg.AdminJWT.Secret, cfg.AdminJWT.Issuer)
	gatewaySvc := service.NewGatewayService(registry, policySvc, sigSvc, spendLedger, auditSvc, m, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        gatewaySvc,
		Registry:       registry,
		WalletRepo:     walletRepo,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		MetricsReg:     metricsReg,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
