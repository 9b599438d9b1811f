package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/advisory/panel"
)

// DefaultWait bounds how long a trigger with ?wait=true blocks for a result.
const DefaultWait = 20 * time.Second

type Handler struct {
	panels  *panel.Manager
	wizard  panel.Wizard
	maxWait time.Duration
}

func New(panels *panel.Manager, wizard panel.Wizard) *Handler {
	return &Handler{panels: panels, wizard: wizard, maxWait: DefaultWait}
}

// Register attaches advisory panel routes to the wizard router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	panels := rg.Group("/sessions/:id/panels")
	panels.GET("", h.list)
	panels.GET("/:kind", h.get)
	panels.POST("/:kind", h.trigger)
	panels.POST("/:kind/retry", h.retry)
	panels.POST("/:kind/reset", h.reset)
	panels.POST("/:kind/apply", h.apply)
	panels.DELETE("/:kind", h.close)
}
