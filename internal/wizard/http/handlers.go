package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/auth"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
)

func (h *Handler) start(c *gin.Context) {
	s, err := h.svc.Start(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse(s))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": items})
}

func (h *Handler) get(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

func (h *Handler) discard(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.svc.Discard(c.Request.Context(), auth.UserFirebaseUID(c), sessionID); err != nil {
		writeError(c, err)
		return
	}
	if h.panels != nil {
		h.panels.CloseSession(sessionID)
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) updateSection(c *gin.Context) {
	section, err := domain.ParseSection(c.Param("section"))
	if err != nil {
		writeError(c, err)
		return
	}
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	s, err := h.svc.UpdateData(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), section, body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

func (h *Handler) toggleBlockedCountry(c *gin.Context) {
	s, err := h.svc.ToggleBlockedCountry(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

func (h *Handler) toggleChannel(c *gin.Context) {
	s, err := h.svc.ToggleMarketingChannel(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), c.Param("channel"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

func (h *Handler) applyYield(c *gin.Context) {
	s, err := h.svc.ApplySuggestedYield(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

func (h *Handler) next(c *gin.Context) {
	s, err := h.svc.Next(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

func (h *Handler) back(c *gin.Context) {
	s, err := h.svc.Back(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

func (h *Handler) goTo(c *gin.Context) {
	step, err := domain.ParseStep(c.Param("step"))
	if err != nil {
		writeError(c, err)
		return
	}
	s, err := h.svc.GoTo(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"), step)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

func (h *Handler) summary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": sum})
}

func (h *Handler) educationPanel(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if h.education == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "education content is not loaded"})
		return
	}
	lp, err := h.education.LearningPanel(s.Record.ProjectInfo.AssetClass)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asset_class":    s.Record.ProjectInfo.AssetClass,
		"learning_panel": lp,
	})
}

func (h *Handler) submit(c *gin.Context) {
	sub, err := h.svc.Submit(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

func (h *Handler) listSubmissions(c *gin.Context) {
	items, err := h.svc.ListSubmissions(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": items})
}

func (h *Handler) getSubmission(c *gin.Context) {
	sub, err := h.svc.GetSubmission(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("public_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submission": sub})
}

func sessionResponse(s *domain.Session) gin.H {
	return gin.H{"session": s, "summary": domain.Summarize(s)}
}

// writeError maps domain errors to status codes; anything unknown is a 500
// whose detail only goes to the log.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSubmissionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPatch),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrUnknownSection),
		errors.Is(err, domain.ErrUnknownStep),
		errors.Is(err, domain.ErrEmptyValue):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrStepInvalid),
		errors.Is(err, domain.ErrAtFirstStep),
		errors.Is(err, domain.ErrAtLastStep),
		errors.Is(err, domain.ErrSessionSubmitted),
		errors.Is(err, domain.ErrStepsIncomplete),
		errors.Is(err, domain.ErrConcurrentUpdate):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAllocationSum):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSubmissionsOff):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		observability.NewLogger(c.Request.Context()).LogError("wizard_http", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
