package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the comment routes under /items/:id/comments.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	comments := r.Group("/items/:id/comments")
	comments.Use(authMiddleware)
	{
		comments.GET("", h.List)
		comments.POST("", h.Create)
		comments.DELETE("/:commentId", h.Delete)
	}
}
