package http

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/photo"
)

type ItemURI struct {
	ItemID int64 `uri:"id" binding:"required,min=1"`
}

type ItemPhotoURI struct {
	ItemID  int64  `uri:"id" binding:"required,min=1"`
	PhotoID string `uri:"photoId" binding:"required,uuid"`
}

type PhotoURI struct {
	PhotoID string `uri:"id" binding:"required,uuid"`
}

type PhotoResponse struct {
	ID           string    `json:"id"`
	ItemID       int64     `json:"item_id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewPhotoResponse(p *photo.Photo) PhotoResponse {
	return PhotoResponse{
		ID:           p.ID,
		ItemID:       p.ItemID,
		Filename:     p.Filename,
		ContentType:  p.ContentType,
		Size:         p.Size,
		Width:        p.Width,
		Height:       p.Height,
		URL:          photo.URL(p.ID),
		ThumbnailURL: photo.ThumbnailURL(p.ID),
		CreatedAt:    p.CreatedAt,
	}
}

func NewPhotoResponses(photos []*photo.Photo) []PhotoResponse {
	out := make([]PhotoResponse, len(photos))
	for i, p := range photos {
		out[i] = NewPhotoResponse(p)
	}
	return out
}
