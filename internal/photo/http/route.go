package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts photo management under /items/:id/photos and serving under /photos.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	itemPhotos := r.Group("/items/:id/photos")
	itemPhotos.Use(authMiddleware)
	{
		itemPhotos.GET("", h.List)
		itemPhotos.POST("", h.Upload)
		itemPhotos.DELETE("/:photoId", h.Delete)
	}

	// Photos are served publicly so they can be embedded directly.
	photos := r.Group("/photos")
	{
		photos.GET("/:id", h.Serve)
		photos.GET("/:id/thumbnail", h.ServeThumbnail)
	}
}
