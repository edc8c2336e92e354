package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meetscribe/meetscribe/internal/auth"
)

// Context keys set by the Auth middleware.
const (
	ContextUserID = "user_id"
	ContextEmail  = "user_email"
)

// AuthConfig configures the JWT authentication middleware.
type AuthConfig struct {
	// Tokens validates bearer tokens.
	Tokens *auth.TokenService
	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string
}

// Auth returns a Gin middleware that validates Bearer tokens and stores the
// authenticated user's id and email in the Gin context.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		claims, err := cfg.Tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}
		userID, err := claims.UserUUID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// bearerToken extracts the token from the Authorization header, falling back
// to the access_token query parameter for EventSource clients that cannot set
// headers.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("access_token")
}

// UserID returns the authenticated user's id from the Gin context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
