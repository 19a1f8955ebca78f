package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckCreateOrder(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	ownItem := &ItemRef{ID: 1, OwnerID: 7, Available: true}
	busyItem := &ItemRef{ID: 1, OwnerID: 7, Available: false}

	tests := []struct {
		name         string
		item         *ItemRef
		bookerExists bool
		bookerID     int64
		start, end   time.Time
		wantErr      error
	}{
		{"missing item wins over everything", nil, false, 7, end, start, ErrItemNotFound},
		{"missing booker before availability", busyItem, false, 2, start, end, ErrUserNotFound},
		{"unavailable before self booking", busyItem, true, 7, start, end, ErrItemUnavailable},
		{"self booking before time range", ownItem, true, 7, end, start, ErrSelfBooking},
		{"end equal to start", ownItem, true, 2, start, start, ErrInvalidTimeRange},
		{"end before start", ownItem, true, 2, end, start, ErrInvalidTimeRange},
		{"valid", ownItem, true, 2, start, end, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkCreate(tt.item, tt.bookerExists, tt.bookerID, tt.start, tt.end)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckDecisionAndCancel(t *testing.T) {
	item := &ItemRef{ID: 1, OwnerID: 7, Available: true}
	waiting := &Booking{ID: 1, ItemID: 1, BookerID: 2, Status: StatusWaiting}
	approved := &Booking{ID: 2, ItemID: 1, BookerID: 2, Status: StatusApproved}

	assert.NoError(t, checkDecision(waiting, item, 7, StatusApproved))
	assert.NoError(t, checkDecision(waiting, item, 7, StatusRejected))
	assert.ErrorIs(t, checkDecision(waiting, item, 2, StatusApproved), ErrPermissionDenied)
	assert.ErrorIs(t, checkDecision(waiting, nil, 7, StatusApproved), ErrPermissionDenied)
	// ownership is checked before status
	assert.ErrorIs(t, checkDecision(approved, item, 3, StatusRejected), ErrPermissionDenied)
	assert.ErrorIs(t, checkDecision(approved, item, 7, StatusRejected), ErrAlreadyProcessed)

	assert.NoError(t, checkCancel(waiting, 2))
	assert.ErrorIs(t, checkCancel(waiting, 7), ErrPermissionDenied)
	assert.ErrorIs(t, checkCancel(approved, 2), ErrAlreadyProcessed)
}

func TestCheckVisible(t *testing.T) {
	item := &ItemRef{ID: 1, OwnerID: 7}
	b := &Booking{ID: 1, ItemID: 1, BookerID: 2}

	assert.NoError(t, checkVisible(b, nil, 2))
	assert.NoError(t, checkVisible(b, item, 7))
	assert.ErrorIs(t, checkVisible(b, item, 3), ErrPermissionDenied)
	assert.ErrorIs(t, checkVisible(b, nil, 7), ErrPermissionDenied)
}
