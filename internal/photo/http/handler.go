package http

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/photo"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
)

// formField is the multipart field carrying the image.
const formField = "file"

type Handler struct {
	service photo.Service
}

func NewHandler(service photo.Service) *Handler {
	return &Handler{service: service}
}

// Upload handles POST /items/:id/photos (multipart/form-data).
func (h *Handler) Upload(c *gin.Context) {
	var uri ItemURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	fileHeader, err := c.FormFile(formField)
	if err != nil {
		response.BadRequest(c, formField+" is required", err)
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "failed to open uploaded file", err)
		return
	}
	defer src.Close()

	p, err := h.service.Upload(c.Request.Context(), photo.UploadRequest{
		ItemID:     uri.ItemID,
		UploaderID: auth.GetUserID(c),
		Filename:   fileHeader.Filename,
		Content:    src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPhotoResponse(p))
}

// List handles GET /items/:id/photos.
func (h *Handler) List(c *gin.Context) {
	var uri ItemURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	photos, err := h.service.ListByItem(c.Request.Context(), uri.ItemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPhotoResponses(photos))
}

// Delete handles DELETE /items/:id/photos/:photoId.
func (h *Handler) Delete(c *gin.Context) {
	var uri ItemPhotoURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ItemID, uri.PhotoID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Serve streams the original image.
func (h *Handler) Serve(c *gin.Context) {
	var uri PhotoURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	stream, p, err := h.service.Open(c.Request.Context(), uri.PhotoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	h.stream(c, stream, p.ContentType, p.Filename)
}

// ServeThumbnail streams the JPEG thumbnail.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var uri PhotoURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	stream, p, err := h.service.OpenThumbnail(c.Request.Context(), uri.PhotoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	h.stream(c, stream, "image/jpeg", p.ID+"_thumb.jpg")
}

func (h *Handler) stream(c *gin.Context, body io.Reader, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	c.Header("Cache-Control", "public, max-age=86400, immutable")

	c.Status(http.StatusOK)
	// Headers are already sent; a copy failure just truncates the body.
	_, _ = io.Copy(c.Writer, body)
}
