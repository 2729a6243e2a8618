package middleware

import (
	"net/http"
	"strings"

	"parking/internal/domain"

	"github.com/gin-gonic/gin"
)

const adminKey = "admin"

// Authenticator resolves a session token.
type Authenticator interface {
	Authenticate(token string) (domain.RequestContext, error)
}

// BearerToken reads the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// AuthOptional records the admin identity when a valid token is sent and
// passes through otherwise.
func AuthOptional(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c); token != "" {
			if who, err := auth.Authenticate(token); err == nil {
				c.Set(adminKey, who)
			}
		}
		c.Next()
	}
}

// RequireAdmin rejects requests without a valid admin session.
func RequireAdmin(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, err := auth.Authenticate(BearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      err.Error(),
				"code":       "unauthorized",
				"message":    err.Error(),
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Set(adminKey, who)
		c.Next()
	}
}

// GetAdmin returns the authenticated admin, if any.
func GetAdmin(c *gin.Context) (domain.RequestContext, bool) {
	v, ok := c.Get(adminKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	who, ok := v.(domain.RequestContext)
	return who, ok
}
