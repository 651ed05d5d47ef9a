package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/routina/payments/pkg/response"
)

const adminRole = "admin"

// AdminAuthMiddleware gates admin routes on an HS256 bearer token carrying
// role=admin. The entitlement table is written only by the IPN path and this
// authenticated surface; everything else is read-only.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "missing bearer token"))
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "invalid token"))
			return
		}
		if role, _ := claims["role"].(string); role != adminRole {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "insufficient role"))
			return
		}

		if sub, _ := claims["sub"].(string); sub != "" {
			c.Set("operatorID", sub)
		}
		c.Next()
	}
}
