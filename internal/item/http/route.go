package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	items := r.Group("/items")
	items.Use(authMiddleware)
	{
		items.GET("", h.ListMine)
		items.GET("/search", h.Search)
		items.GET("/:id", h.Get)
		items.POST("", h.Create)
		items.PATCH("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
	}
}
