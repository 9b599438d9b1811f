package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
)

// MetricsHandler serves the in-process counters as JSON.
func MetricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, observability.GetMetrics().Snapshot())
}
