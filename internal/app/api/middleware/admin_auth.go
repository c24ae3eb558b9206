package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/racebio/promoter/pkg/response"
)

// AdminAuthMiddleware validates an HS256 bearer token and requires an admin
// role claim on the admin route group.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "missing authorization token"))
			return
		}

		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "invalid or expired token"))
			return
		}

		role, _ := claims["role"].(string)
		if role != "admin" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "admin role required"))
			return
		}

		if sub, _ := claims["sub"].(string); sub != "" {
			c.Set("admin_id", sub)
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
