package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	services := map[string]string{
		"api":   "healthy",
		"store": "unknown",
	}

	if err := h.store.Ping(ctx); err != nil {
		services["store"] = "unhealthy"
	} else {
		services["store"] = "healthy"
	}

	overallStatus := "healthy"
	if services["store"] == "unhealthy" {
		overallStatus = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	})
}
