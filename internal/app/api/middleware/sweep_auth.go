package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/racebio/promoter/pkg/response"
)

const sweepTokenHeader = "X-Sweep-Token"

// SweepAuthMiddleware gates the scheduler endpoints behind a shared secret,
// compared in constant time. An empty configured secret leaves the endpoint
// open (the deployment is expected to always set one in production; the
// server logs a warning at startup when it is missing).
func SweepAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		presented := c.GetHeader(sweepTokenHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "invalid sweep token"))
			return
		}
		c.Next()
	}
}
