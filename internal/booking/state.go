package booking

import (
	"sort"
	"strings"
	"time"
)

// State is a named view over a set of bookings, evaluated against a reference time.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState accepts a view keyword in any letter case. Empty means ALL.
func ParseState(s string) (State, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StateAll, nil
	}
	switch st := State(strings.ToUpper(s)); st {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return st, nil
	default:
		return "", ErrUnknownState
	}
}

// Matches reports whether b belongs to the view at time now.
// CURRENT is inclusive on both ends: start <= now <= end.
func (s State) Matches(b *Booking, now time.Time) bool {
	switch s {
	case StateAll:
		return true
	case StateCurrent:
		return !b.Start.After(now) && !b.End.Before(now)
	case StatePast:
		return b.End.Before(now)
	case StateFuture:
		return b.Start.After(now)
	case StateWaiting:
		return b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	default:
		return false
	}
}

// Classify filters bookings by state and orders them by start, newest first.
// Equal starts fall back to the higher id first so output is deterministic.
func Classify(bookings []*Booking, state State, now time.Time) []*Booking {
	out := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if state.Matches(b, now) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID > out[j].ID
		}
		return out[i].Start.After(out[j].Start)
	})
	return out
}

// Paginate skips from elements and keeps at most size. An offset past the end yields an empty page.
func Paginate(bookings []*Booking, from, size int) []*Booking {
	if from < 0 {
		from = 0
	}
	if size < 0 {
		size = 0
	}
	if from >= len(bookings) {
		return []*Booking{}
	}
	end := from + size
	if end > len(bookings) {
		end = len(bookings)
	}
	return bookings[from:end]
}

// LastApproved returns the approved booking that started before now with the latest end.
func LastApproved(bookings []*Booking, now time.Time) *Booking {
	var last *Booking
	for _, b := range bookings {
		if b.Status != StatusApproved || !b.Start.Before(now) {
			continue
		}
		if last == nil || b.End.After(last.End) {
			last = b
		}
	}
	return last
}

// NextApproved returns the approved booking with the earliest start after now.
func NextApproved(bookings []*Booking, now time.Time) *Booking {
	var next *Booking
	for _, b := range bookings {
		if b.Status != StatusApproved || !b.Start.After(now) {
			continue
		}
		if next == nil || b.Start.Before(next.Start) {
			next = b
		}
	}
	return next
}

// GroupByItem splits bookings into per-item last/next pairs.
func GroupByItem(bookings []*Booking, now time.Time) map[int64]ItemBookings {
	byItem := make(map[int64][]*Booking)
	for _, b := range bookings {
		byItem[b.ItemID] = append(byItem[b.ItemID], b)
	}

	out := make(map[int64]ItemBookings, len(byItem))
	for id, list := range byItem {
		out[id] = ItemBookings{
			Last: LastApproved(list, now),
			Next: NextApproved(list, now),
		}
	}
	return out
}
