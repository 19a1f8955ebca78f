package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderOptions controls the acting-as header accepted in place of a bearer token.
type HeaderOptions struct {
	// Trust enables identity from Name. Only for deployments behind a gateway that sets it.
	Trust bool
	Name  string
}

// AuthRequired is a Gin middleware that resolves the acting user.
// A bearer token always wins; the acting-as header is consulted only when trusted.
func AuthRequired(jwtManager *JWTManager, header HeaderOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")

		if authz == "" && header.Trust && header.Name != "" {
			raw := strings.TrimSpace(c.GetHeader(header.Name))
			if raw == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "missing credentials",
				})
				return
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": "invalid " + header.Name + " header",
				})
				return
			}
			c.Set(ctxUserID, id)
			c.Next()
			return
		}

		if authz == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing Authorization header",
			})
			return
		}

		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid Authorization header format",
			})
			return
		}

		claims, err := jwtManager.ParseAndValidate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		// Store user info into Gin context for later handlers.
		c.Set(ctxUserID, claims.UserID)

		c.Next()
	}
}
