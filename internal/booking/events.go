package booking

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	EventCreated  = "booking.created"
	EventApproved = "booking.approved"
	EventRejected = "booking.rejected"
	EventCanceled = "booking.canceled"
)

// Event is the payload published after every committed lifecycle change.
type Event struct {
	Type       string    `json:"type"`
	BookingID  int64     `json:"booking_id"`
	ItemID     int64     `json:"item_id"`
	BookerID   int64     `json:"booker_id"`
	Status     Status    `json:"status"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurred_at"`
}

func eventForStatus(s Status) string {
	switch s {
	case StatusApproved:
		return EventApproved
	case StatusRejected:
		return EventRejected
	case StatusCanceled:
		return EventCanceled
	default:
		return EventCreated
	}
}

// publish is best effort: the write it describes has already been committed.
func (s *service) publish(ctx context.Context, eventType string, b *Booking) {
	if s.publisher == nil {
		return
	}

	evt := Event{
		Type:       eventType,
		BookingID:  b.ID,
		ItemID:     b.ItemID,
		BookerID:   b.BookerID,
		Status:     b.Status,
		Start:      b.Start,
		End:        b.End,
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, strconv.FormatInt(b.ID, 10), evt); err != nil {
		s.logger.Error("failed to publish booking event",
			zap.String("event_type", eventType),
			zap.Int64("booking_id", b.ID),
			zap.Error(err),
		)
	}
}
