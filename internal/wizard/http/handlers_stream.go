package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/auth"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
)

// streamEvents streams session updates using Server-Sent Events (SSE)
func (h *Handler) streamEvents(c *gin.Context) {
	sessionID := c.Param("id")
	userID := auth.UserFirebaseUID(c)
	ctx := c.Request.Context()

	s, err := h.svc.Get(ctx, userID, sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream unavailable"})
		return
	}

	sub := h.events.Subscribe(ctx, sessionID)
	defer sub.Close()
	// wait for the subscription so no update between here and the loop is lost
	if _, err := sub.Receive(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	writeEvent(c, flusher, "initial", sessionResponse(s))

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	messages := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			// a deleted session publishes nothing, so check on every ping
			if _, err := h.svc.Get(ctx, userID, sessionID); errors.Is(err, domain.ErrSessionNotFound) {
				writeEvent(c, flusher, "deleted", gin.H{"session_id": sessionID})
				return
			}
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case msg, ok := <-messages:
			if !ok {
				return
			}
			var updated domain.Session
			if err := json.Unmarshal([]byte(msg.Payload), &updated); err != nil {
				continue
			}
			writeEvent(c, flusher, "update", sessionResponse(&updated))
		}
	}
}

func writeEvent(c *gin.Context, flusher http.Flusher, event string, payload any) {
	data, _ := json.Marshal(payload)
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
