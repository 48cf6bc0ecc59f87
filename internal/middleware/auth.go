// Package middleware contains the Gin middleware for the analysis API:
// API-key auth, CORS, and per-caller rate limiting.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth returns middleware that admits callers presenting one of the
// configured API keys, via the X-API-Key header or an api_key query param.
// The accepted key is stored in the context under "api_key" so the rate
// limiter can bucket per caller.
func APIKeyAuth(validKeys []string) gin.HandlerFunc {
	return requireKey(validKeys, http.StatusUnauthorized, "API key")
}

// AdminKeyAuth is APIKeyAuth for the admin endpoints. A key that is present
// but not an admin key gets 403 rather than 401, so operators can tell a
// misconfigured caller from an unauthorized one.
func AdminKeyAuth(adminKeys []string) gin.HandlerFunc {
	return requireKey(adminKeys, http.StatusForbidden, "admin API key")
}

func requireKey(keys []string, rejectStatus int, label string) gin.HandlerFunc {
	keySet := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keySet[k] = struct{}{}
	}

	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + label,
			})
			return
		}
		if _, ok := keySet[key]; !ok {
			c.AbortWithStatusJSON(rejectStatus, gin.H{
				"error": "invalid " + label,
			})
			return
		}

		c.Set("api_key", key)
		c.Next()
	}
}
