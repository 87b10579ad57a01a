package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todolist/internal/auth"
)

// DeviceIDKey holds the authenticated device id (string) in the gin context.
const DeviceIDKey = "device_id"

// JWTAuthMiddleware requires a Bearer token. Event streams may pass it as the
// token query parameter since browsers cannot set headers on EventSource.
func JWTAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	secret := []byte(jwtSecret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if tok := c.Query("token"); tok != "" {
				header = "Bearer " + tok
			}
		}
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		deviceID, err := auth.ParseToken(secret, parts[1])
		if errors.Is(err, auth.ErrInvalidToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if err != nil || uuid.Validate(deviceID) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid device ID in token"})
			return
		}

		c.Set(DeviceIDKey, deviceID)
		c.Next()
	}
}
