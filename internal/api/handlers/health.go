package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lneuendorf/cfbsim/internal/apitypes"
	"github.com/lneuendorf/cfbsim/pkg/database"
)

// HealthHandler handles health check endpoints for the replay server.
type HealthHandler struct {
	db     *database.DB
	redis  *redis.Client
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(
	db *database.DB,
	redis *redis.Client,
	logger *logrus.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redis,
		logger: logger,
	}
}

// GetHealth returns the basic health status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := apitypes.HealthStatus{
		Status:    "ok",
		Service:   "cfbsim-server",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			response.Status = "degraded"
			response.Checks["database"] = "failed: " + err.Error()
		} else {
			response.Checks["database"] = "ok"
		}
	} else {
		response.Checks["database"] = "not_configured"
	}

	// replay batch results are cached in Redis; treat it as critical.
	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Status = "unhealthy"
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	} else if response.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}

	c.JSON(statusCode, response)
}

// GetReady returns the readiness status.
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := apitypes.HealthStatus{
		Status:    "ready",
		Service:   "cfbsim-server",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Status = "not_ready"
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
	}

	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			response.Checks["database"] = "failed: " + err.Error()
			// a replay batch runs entirely in memory, so a database
			// outage alone doesn't make the server unready.
		} else {
			response.Checks["database"] = "ok"
		}
	}

	statusCode := http.StatusOK
	if response.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetMetrics returns a small set of operational metrics.
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	metrics := map[string]interface{}{
		"service":   "cfbsim-server",
		"timestamp": time.Now(),
	}

	if info, err := h.redis.Info(c.Request.Context()).Result(); err == nil {
		metrics["redis"] = map[string]interface{}{
			"connected":      true,
			"info_available": len(info) > 0,
		}
	}

	if dbSize, err := h.redis.DBSize(c.Request.Context()).Result(); err == nil {
		metrics["cache"] = map[string]interface{}{
			"total_keys": dbSize,
		}

		if batchKeys, err := h.redis.Keys(c.Request.Context(), "replay:batch:*").Result(); err == nil {
			metrics["batch_cache"] = map[string]interface{}{
				"cached_results": len(batchKeys),
			}
		}

		if artifactKeys, err := h.redis.Keys(c.Request.Context(), "replay:oracle:*").Result(); err == nil {
			metrics["oracle_artifact_cache"] = map[string]interface{}{
				"cached_artifacts": len(artifactKeys),
			}
		}
	}

	if h.db != nil {
		if sqlDB, err := h.db.DB.DB(); err == nil {
			stats := sqlDB.Stats()
			metrics["database"] = map[string]interface{}{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
			}
		}
	}

	c.JSON(http.StatusOK, metrics)
}
