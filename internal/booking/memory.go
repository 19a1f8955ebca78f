package booking

import (
	"context"
	"sync"
	"time"
)

// memoryRepository keeps bookings in process memory.
// byBooker and byItem always hold exactly the ids present in records.
type memoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	records  map[int64]*Booking
	byBooker map[int64]map[int64]struct{}
	byItem   map[int64]map[int64]struct{}
	now      func() time.Time
}

// NewMemoryRepository returns an empty in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		records:  make(map[int64]*Booking),
		byBooker: make(map[int64]map[int64]struct{}),
		byItem:   make(map[int64]map[int64]struct{}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func addIndex(idx map[int64]map[int64]struct{}, key, id int64) {
	set, ok := idx[key]
	if !ok {
		set = make(map[int64]struct{})
		idx[key] = set
	}
	set[id] = struct{}{}
}

func removeIndex(idx map[int64]map[int64]struct{}, key, id int64) {
	set, ok := idx[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(idx, key)
	}
}

func (r *memoryRepository) Save(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if b.ID == 0 {
		r.nextID++
		b.ID = r.nextID
		b.CreatedAt = now
		b.UpdatedAt = now
		r.records[b.ID] = b.clone()
		addIndex(r.byBooker, b.BookerID, b.ID)
		addIndex(r.byItem, b.ItemID, b.ID)
		return nil
	}

	stored, ok := r.records[b.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = b.Status
	stored.UpdatedAt = now
	b.UpdatedAt = now
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id int64) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.clone(), nil
}

func (r *memoryRepository) collect(ids map[int64]struct{}, out []*Booking) []*Booking {
	for id := range ids {
		out = append(out, r.records[id].clone())
	}
	return out
}

func (r *memoryRepository) ListByBooker(_ context.Context, bookerID int64) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(r.byBooker[bookerID], nil), nil
}

func (r *memoryRepository) ListByItemIDs(_ context.Context, itemIDs []int64) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Booking
	seen := make(map[int64]struct{}, len(itemIDs))
	for _, itemID := range itemIDs {
		if _, dup := seen[itemID]; dup {
			continue
		}
		seen[itemID] = struct{}{}
		out = r.collect(r.byItem[itemID], out)
	}
	return out, nil
}

func (r *memoryRepository) ExistsApprovedEnded(_ context.Context, itemID, bookerID int64, asOf time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id := range r.byBooker[bookerID] {
		b := r.records[id]
		if b.ItemID == itemID && b.Status == StatusApproved && b.End.Before(asOf) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id int64, from, to Status) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != from {
		return nil, ErrAlreadyProcessed
	}
	b.Status = to
	b.UpdatedAt = r.now()
	return b.clone(), nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.records[id]
	if !ok {
		return nil
	}
	delete(r.records, id)
	removeIndex(r.byBooker, b.BookerID, id)
	removeIndex(r.byItem, b.ItemID, id)
	return nil
}
