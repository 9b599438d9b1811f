package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/catalog"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/service"
)

// Education serves the asset-class learning panel of the education step.
type Education interface {
	LearningPanel(assetClass string) (catalog.LearningPanel, error)
}

// EventSource streams session updates.
type EventSource interface {
	Subscribe(ctx context.Context, sessionID string) *redis.PubSub
}

// PanelCloser drops the advisory panels of a discarded session.
type PanelCloser interface {
	CloseSession(sessionID string) int
}

type Handler struct {
	svc       *service.Orchestrator
	education Education
	events    EventSource
	panels    PanelCloser
	keepAlive time.Duration
}

// New creates the wizard handler. events and panels may be nil.
func New(svc *service.Orchestrator, education Education, events EventSource, panels PanelCloser) *Handler {
	return &Handler{
		svc:       svc,
		education: education,
		events:    events,
		panels:    panels,
		keepAlive: 15 * time.Second,
	}
}

// Register attaches wizard routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.start)
	rg.GET("/sessions", h.list)
	rg.GET("/sessions/:id", h.get)
	rg.DELETE("/sessions/:id", h.discard)

	rg.PATCH("/sessions/:id/sections/:section", h.updateSection)
	rg.POST("/sessions/:id/compliance/blocked-countries/:code/toggle", h.toggleBlockedCountry)
	rg.POST("/sessions/:id/distribution/channels/:channel/toggle", h.toggleChannel)
	rg.POST("/sessions/:id/tokenomics/apply-yield", h.applyYield)

	rg.POST("/sessions/:id/next", h.next)
	rg.POST("/sessions/:id/back", h.back)
	rg.POST("/sessions/:id/goto/:step", h.goTo)

	rg.GET("/sessions/:id/summary", h.summary)
	rg.GET("/sessions/:id/education", h.educationPanel)
	rg.GET("/sessions/:id/events", h.streamEvents)
	rg.POST("/sessions/:id/submit", h.submit)

	rg.GET("/submissions", h.listSubmissions)
	rg.GET("/submissions/:public_id", h.getSubmission)
}
