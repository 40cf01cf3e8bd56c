package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okhowto/video-catalog-go/internal/blob"
	"github.com/okhowto/video-catalog-go/internal/catalog"
	"github.com/okhowto/video-catalog-go/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	blobs     blob.Store
	publisher *service.CatalogPublisher
}

// NewHealthHandler creates a new HealthHandler instance. The publisher may be
// nil when event publishing is not configured.
func NewHealthHandler(blobs blob.Store, publisher *service.CatalogPublisher) *HealthHandler {
	return &HealthHandler{
		blobs:     blobs,
		publisher: publisher,
	}
}

// LivenessProbe checks if the application is running.
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"time":   time.Now(),
	})
}

// ReadinessProbe checks if the application is ready to serve traffic. An
// absent catalog document is fine; an unreachable or unprovisioned blob
// store is not.
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	ctx := c.Request.Context()

	if _, err := h.blobs.Metadata(ctx, catalog.DocumentKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "DOWN",
			"blobstore": "unhealthy",
			"error":     err.Error(),
			"time":      time.Now(),
		})
		return
	}

	if h.publisher != nil && !h.publisher.IsHealthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "DOWN",
			"rabbitmq": "unhealthy",
			"time":     time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "UP",
		"blobstore": "healthy",
		"time":      time.Now(),
	})
}
