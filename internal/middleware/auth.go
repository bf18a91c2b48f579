package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sposusu/eat-aware-scheduler/internal/auth"
)

const userIDKey = "userID"

// SessionAuth requires a bearer session token and stores its userID on the
// request context.
func SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format, use 'Bearer <token>'"})
			c.Abort()
			return
		}

		userID, err := auth.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token: " + err.Error()})
			c.Abort()
			return
		}

		log.Debug().Str("userId", userID).Str("path", c.FullPath()).Msg("session authenticated")

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the id set by SessionAuth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
