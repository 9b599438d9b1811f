package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/advisory/panel"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/auth"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
)

type triggerReq struct {
	Text string `json:"text"`
}

// owned resolves the session and kind of a request, writing the error response
// when the session is not the caller's.
func (h *Handler) owned(c *gin.Context, withKind bool) (string, string, panel.Kind, bool) {
	userID := auth.UserFirebaseUID(c)
	sessionID := c.Param("id")

	if _, err := h.wizard.Get(c.Request.Context(), userID, sessionID); err != nil {
		writeError(c, err)
		return "", "", "", false
	}
	if !withKind {
		return userID, sessionID, "", true
	}
	kind, err := panel.ParseKind(c.Param("kind"))
	if err != nil {
		writeError(c, err)
		return "", "", "", false
	}
	return userID, sessionID, kind, true
}

func (h *Handler) list(c *gin.Context) {
	userID, sessionID, _, ok := h.owned(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"panels": h.panels.List(userID, sessionID)})
}

func (h *Handler) get(c *gin.Context) {
	userID, sessionID, kind, ok := h.owned(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"panel": h.panels.Get(userID, sessionID, kind)})
}

// trigger starts a panel. With ?wait=true the response holds the finished
// view, or the loading view with 202 when the wait runs out.
func (h *Handler) trigger(c *gin.Context) {
	userID, sessionID, kind, ok := h.owned(c, true)
	if !ok {
		return
	}

	var req triggerReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	view, err := h.panels.Trigger(c.Request.Context(), userID, sessionID, kind, panel.Input{Text: req.Text})
	if err != nil {
		writeError(c, err)
		return
	}
	h.respond(c, userID, sessionID, kind, view)
}

func (h *Handler) retry(c *gin.Context) {
	userID, sessionID, kind, ok := h.owned(c, true)
	if !ok {
		return
	}
	view, err := h.panels.Retry(c.Request.Context(), userID, sessionID, kind)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respond(c, userID, sessionID, kind, view)
}

func (h *Handler) respond(c *gin.Context, userID, sessionID string, kind panel.Kind, view panel.View) {
	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.maxWait)
		defer cancel()
		if v, err := h.panels.Await(ctx, userID, sessionID, kind); err == nil {
			view = v
		}
	}
	status := http.StatusAccepted
	if view.State != panel.StateLoading {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"panel": view})
}

func (h *Handler) reset(c *gin.Context) {
	userID, sessionID, kind, ok := h.owned(c, true)
	if !ok {
		return
	}
	view, err := h.panels.Reset(userID, sessionID, kind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"panel": view})
}

func (h *Handler) apply(c *gin.Context) {
	userID, sessionID, kind, ok := h.owned(c, true)
	if !ok {
		return
	}
	s, err := h.panels.Apply(c.Request.Context(), userID, sessionID, kind)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": s,
		"summary": domain.Summarize(s),
		"panel":   h.panels.Get(userID, sessionID, kind),
	})
}

func (h *Handler) close(c *gin.Context) {
	userID, sessionID, kind, ok := h.owned(c, true)
	if !ok {
		return
	}
	h.panels.Close(userID, sessionID, kind)
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, panel.ErrUnknownKind),
		errors.Is(err, panel.ErrNotApplicable):
		status = http.StatusBadRequest
	case errors.Is(err, panel.ErrInputTooShort),
		errors.Is(err, panel.ErrInputMissing):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, panel.ErrPanelBusy),
		errors.Is(err, panel.ErrNoResult),
		errors.Is(err, panel.ErrNotRetryable),
		errors.Is(err, panel.ErrAlreadyApplied),
		errors.Is(err, domain.ErrSessionSubmitted),
		errors.Is(err, domain.ErrConcurrentUpdate):
		status = http.StatusConflict
	default:
		observability.NewLogger(c.Request.Context()).LogError("advisory_http", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
