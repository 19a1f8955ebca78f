package http

import (
	"time"

	bookingHttp "github.com/nekogravitycat/shareit-backend/internal/booking/http"
	commentHttp "github.com/nekogravitycat/shareit-backend/internal/comment/http"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
)

// CreateItemRequest defines the payload for listing a new item.
type CreateItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Available   *bool  `json:"available" binding:"required"`
	RequestID   *int64 `json:"request_id" binding:"omitempty,min=1"`
}

// UpdateItemRequest defines fields allowed to be updated via PATCH /items/:id.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// SearchItemsRequest defines query parameters for item search.
type SearchItemsRequest struct {
	request.ListParams
	Text string `form:"text"`
}

// ItemResponse is the plain item shape used by create, update and search.
type ItemResponse struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	RequestID   *int64    `json:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewItemResponse(it *item.Item) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		OwnerID:     it.OwnerID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		RequestID:   it.RequestID,
		CreatedAt:   it.CreatedAt,
	}
}

// ItemDetailResponse adds the owner's booking neighbours and the comments.
type ItemDetailResponse struct {
	ItemResponse
	LastBooking *bookingHttp.BookingTag       `json:"last_booking"`
	NextBooking *bookingHttp.BookingTag       `json:"next_booking"`
	Comments    []commentHttp.CommentResponse `json:"comments"`
}

func NewItemDetailResponse(v *item.View) ItemDetailResponse {
	return ItemDetailResponse{
		ItemResponse: NewItemResponse(v.Item),
		LastBooking:  bookingHttp.NewBookingTag(v.LastBooking),
		NextBooking:  bookingHttp.NewBookingTag(v.NextBooking),
		Comments:     commentHttp.NewCommentResponses(v.Comments),
	}
}
