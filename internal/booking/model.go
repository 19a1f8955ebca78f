package booking

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("booking not found")
	ErrItemNotFound     = apperror.NotFound("item not found")
	ErrUserNotFound     = apperror.NotFound("user not found")
	ErrSelfBooking      = apperror.NotFound("owner cannot book their own item")
	ErrItemUnavailable  = apperror.Validation("item is not available for booking")
	ErrInvalidTimeRange = apperror.Validation("end time must be after start time")
	ErrStartTimePast    = apperror.Validation("cannot create booking in the past")
	ErrAlreadyProcessed = apperror.Validation("booking has already been processed")
	ErrUnknownState     = apperror.Validation("unknown state")
	ErrPermissionDenied = apperror.Forbidden("permission denied")
)

// Booking is a time-bounded request by a booker to rent an item.
// ItemID, BookerID, Start and End never change after the first save.
type Booking struct {
	ID        int64
	ItemID    int64
	BookerID  int64
	Start     time.Time
	End       time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemRef is the slice of an item the engine needs.
type ItemRef struct {
	ID        int64
	OwnerID   int64
	Available bool
}

// ItemBookings holds the owner-facing neighbours of an item on the timeline.
type ItemBookings struct {
	Last *Booking
	Next *Booking
}

// ListQuery selects a view and an offset window.
type ListQuery struct {
	State string
	From  int
	Size  int
}

// Page is one window of a classified listing.
type Page struct {
	Items []*Booking
	From  int
	Size  int
	Total int
}

func (b *Booking) clone() *Booking {
	c := *b
	return &c
}
