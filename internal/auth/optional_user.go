package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// DemoUser owns every session created without an X-User-Id header.
const DemoUser = "demo-user"

// OptionalUser sets a firebase uid in context without enforcing auth.
// - If X-User-Id is missing, it falls back to DemoUser.
// - Use this ONLY for development/testing.
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = DemoUser
		}
		c.Set(CtxFirebaseUID, uid)
		c.Next()
	}
}
