package http

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	State string `form:"state,default=ALL"`
}

type BookingResponse struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	BookerID  int64     `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		ItemID:    b.ItemID,
		BookerID:  b.BookerID,
		Start:     b.Start,
		End:       b.End,
		Status:    b.Status.String(),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// BookingTag is the short form embedded in item responses for the owner.
type BookingTag struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// NewBookingTag returns nil for a nil booking so the field renders as null.
func NewBookingTag(b *booking.Booking) *BookingTag {
	if b == nil {
		return nil
	}
	return &BookingTag{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}

type CreateBookingBody struct {
	ItemID int64     `json:"item_id" binding:"required,min=1"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// Validate performs custom validation for CreateBookingBody against the given time.
// The engine owns the end-after-start rule; the transport rejects starts in the past.
func (r *CreateBookingBody) Validate(now time.Time) error {
	if r.Start.Before(now) {
		return booking.ErrStartTimePast
	}
	return nil
}

// ApproveQuery carries the owner's decision. A pointer keeps "approved=false" distinct from a missing flag.
type ApproveQuery struct {
	Approved *bool `form:"approved" binding:"required"`
}
