package auth

import "github.com/gin-gonic/gin"

const ctxUserID = "userID"

// GetUserID returns the acting user's ID or 0.
func GetUserID(c *gin.Context) int64 {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
