package booking

import "time"

// Policy checks are pure: they only look at data the caller already fetched.

// checkCreate runs the creation rules in order; the first violation wins.
// item is nil when the catalog has no such item.
func checkCreate(item *ItemRef, bookerExists bool, bookerID int64, start, end time.Time) error {
	if item == nil {
		return ErrItemNotFound
	}
	if !bookerExists {
		return ErrUserNotFound
	}
	if !item.Available {
		return ErrItemUnavailable
	}
	if item.OwnerID == bookerID {
		return ErrSelfBooking
	}
	if !end.After(start) {
		return ErrInvalidTimeRange
	}
	return nil
}

// checkTransition verifies the current status may move to target.
func checkTransition(b *Booking, target Status) error {
	if !b.Status.CanTransitionTo(target) {
		return ErrAlreadyProcessed
	}
	return nil
}

// checkDecision guards approve/reject: only the item owner may decide.
func checkDecision(b *Booking, item *ItemRef, callerID int64, target Status) error {
	if item == nil || item.OwnerID != callerID {
		return ErrPermissionDenied
	}
	return checkTransition(b, target)
}

// checkCancel guards cancellation: only the booker may withdraw a request.
func checkCancel(b *Booking, callerID int64) error {
	if b.BookerID != callerID {
		return ErrPermissionDenied
	}
	return checkTransition(b, StatusCanceled)
}

// checkVisible reports whether the requester may read the booking.
func checkVisible(b *Booking, item *ItemRef, requesterID int64) error {
	if b.BookerID == requesterID {
		return nil
	}
	if item != nil && item.OwnerID == requesterID {
		return nil
	}
	return ErrPermissionDenied
}
