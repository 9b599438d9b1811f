package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/users"
)

const CtxUserDBID = "user_db_id"

// UserStore is satisfied by *users.Repo.
type UserStore interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
}

// WithUser records the authenticated user in the users table. It must run
// after FirebaseAuthMiddleware or OptionalUser.
func WithUser(store UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := UserFirebaseUID(c)
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
			c.Abort()
			return
		}

		email := c.GetString(CtxEmail)
		if email == "" {
			email = c.GetHeader("X-User-Email")
		}
		id, err := store.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: uid,
			Email:       email,
			DisplayName: c.GetHeader("X-User-Name"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ensure user failed"})
			c.Abort()
			return
		}

		c.Set(CtxUserDBID, id)
		c.Next()
	}
}

func UserDBID(c *gin.Context) string {
	return c.GetString(CtxUserDBID)
}
