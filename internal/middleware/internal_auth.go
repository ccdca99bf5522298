package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// InternalAuth guards operator-only routes (scheduler trigger, cost
// dashboard) with a shared token carried in X-Internal-Token.
func InternalAuth(token string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Internal API is not configured"})
			return
		}

		provided := ctx.GetHeader("X-Internal-Token")

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid internal token"})
			return
		}

		ctx.Next()
	}
}
