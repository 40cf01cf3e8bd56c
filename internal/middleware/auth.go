// Package middleware provides the gin middleware for the catalog API.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okhowto/video-catalog-go/pkg/logger"
)

const (
	// HeaderAdminToken carries the shared secret admin tooling writes with.
	HeaderAdminToken = "X-Admin-Token"
)

// AdminAuth validates the shared-secret header with a constant-time compare.
// An empty expected token rejects every request: an undeployed secret must
// fail closed, not open.
func AdminAuth(expectedToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(HeaderAdminToken)

		if expectedToken == "" || provided == "" ||
			subtle.ConstantTimeCompare([]byte(provided), []byte(expectedToken)) != 1 {
			logger.Log.Warn("unauthorized request - invalid or missing admin token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "invalid or missing admin token",
			})
			return
		}

		c.Next()
	}
}
