package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ozzus/prime-checker/internal/domain"
)

type statusProvider interface {
	HealthCheck(ctx context.Context) error
	Status() domain.ServiceStatus
}

type HealthController struct {
	service statusProvider
	build   domain.BuildInfo
}

func NewHealthController(service statusProvider, build domain.BuildInfo) *HealthController {
	return &HealthController{
		service: service,
		build:   build,
	}
}

// Health reports liveness of the check service.
func (h *HealthController) Health(c *gin.Context) {
	if err := h.service.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, domain.HealthResponse{
			Status:    domain.HealthStatusUnhealthy,
			Timestamp: time.Now(),
			Service:   h.build.Service,
			Message:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, domain.HealthResponse{
		Status:    domain.HealthStatusHealthy,
		Timestamp: time.Now(),
		Service:   h.build.Service,
		Message:   "service is running",
	})
}

func (h *HealthController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status())
}

// Ready reports whether checks are accepted right now.
func (h *HealthController) Ready(c *gin.Context) {
	if err := h.service.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"service":   h.build.Service,
			"message":   err.Error(),
			"timestamp": time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   h.build.Service,
		"message":   "ready to check numbers",
		"timestamp": time.Now(),
	})
}

func (h *HealthController) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"build":     h.build,
		"status":    h.service.Status(),
		"timestamp": time.Now(),
	})
}

func (h *HealthController) Version(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}
