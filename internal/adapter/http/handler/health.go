package handler

import (
	"context"
	"net/http"
	"time"

	"agent-payment-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck returns a handler that verifies every backing dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		deps := make(map[string]string, len(checkers))
		healthy := true
		for _, checker := range checkers {
			if err := checker.Check(ctx); err != nil {
				deps[checker.Name()] = "unhealthy: " + err.Error()
				healthy = false
			} else {
				deps[checker.Name()] = "ok"
			}
		}

		status := http.StatusOK
		overall := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		c.JSON(status, gin.H{
			"status":       overall,
			"dependencies": deps,
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}
