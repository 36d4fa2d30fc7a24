package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ocorrencias-ponto/backend/internal/dto"
	"ocorrencias-ponto/backend/internal/service"
)

// Pinger checks a dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler liveness and dataset readiness
type HealthHandler struct {
	datasetSvc service.DatasetService
	redis      Pinger // nil when Redis is not configured
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(datasetSvc service.DatasetService, redis Pinger) *HealthHandler {
	return &HealthHandler{datasetSvc: datasetSvc, redis: redis}
}

// Health GET /health. 200 once the dataset is loaded, 503 before.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Redis: "disabled", Dataset: *h.datasetSvc.Status()}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		resp.Redis = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			resp.Redis = "unavailable"
		}
	}

	status := http.StatusOK
	if !resp.Dataset.Loaded {
		resp.Status = "loading"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
