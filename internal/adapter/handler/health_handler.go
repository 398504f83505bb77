package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker はサービスの健全性を確認するインターフェース。
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// ReadinessCheck は /readyz で確認する依存先 1 件。
// Optional の依存先は失敗しても not ready にしない。
type ReadinessCheck struct {
	Name     string
	Checker  HealthChecker
	Optional bool
}

// HealthzHandler は GET /healthz のハンドラー。
func HealthzHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
}

// ReadyzHandler は GET /readyz のハンドラー。
// Checker が nil の依存先は確認を省略する。
func ReadyzHandler(checks ...ReadinessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		allReady := true

		for _, check := range checks {
			results[check.Name] = "ok"
			if check.Checker == nil {
				continue
			}
			if err := check.Checker.Healthy(ctx); err != nil {
				results[check.Name] = "error: " + err.Error()
				if !check.Optional {
					allReady = false
				}
			}
		}

		status := "ready"
		statusCode := http.StatusOK
		if !allReady {
			status = "not ready"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status": status,
			"checks": results,
		})
	}
}
