package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sposusu/eat-aware-scheduler/internal/auth"
)

const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey guards operator routes with a bcrypt-hashed key. With no
// hash configured every request is refused.
func RequireAdminKey(hash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hash == "" {
			c.AbortWithStatusJSON(403, gin.H{"error": "admin access disabled"})
			return
		}

		key := c.GetHeader(AdminKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(403, gin.H{"error": "admin key missing"})
			return
		}

		if err := auth.CheckAdminKey(hash, key); err != nil {
			log.Warn().Str("ip", c.ClientIP()).Str("path", c.FullPath()).Msg("rejected admin key")
			c.AbortWithStatusJSON(403, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
