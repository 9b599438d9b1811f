package http

import (
	"github.com/gin-gonic/gin"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/service"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches academy routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/catalog", h.catalog)
	rg.GET("/pages/:id", h.page)
	rg.GET("/learning-panels/:asset_class", h.learningPanel)

	rg.POST("/attempts", h.startAttempt)
	rg.GET("/attempts/:id", h.getAttempt)
	rg.POST("/attempts/:id/answer", h.answer)
	rg.POST("/attempts/:id/advance", h.advance)
	rg.POST("/attempts/:id/certify", h.certify)

	rg.GET("/certifications", h.certifications)
}
