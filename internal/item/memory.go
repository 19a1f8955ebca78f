package item

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]*Item
}

// NewMemoryRepository returns an in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{items: make(map[int64]*Item)}
}

func copyItem(it *Item) *Item {
	c := *it
	if it.RequestID != nil {
		id := *it.RequestID
		c.RequestID = &id
	}
	return &c
}

func (r *memoryRepository) Create(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	it.ID = r.nextID
	it.CreatedAt = time.Now().UTC()
	r.items[it.ID] = copyItem(it)
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id int64) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyItem(it), nil
}

func (r *memoryRepository) filter(match func(*Item) bool) []*Item {
	r.mu.RLock()
	var out []*Item
	for _, it := range r.items {
		if match(it) {
			out = append(out, copyItem(it))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func window(items []*Item, from, size int) ([]*Item, int) {
	total := len(items)
	if from >= total {
		return nil, total
	}
	end := from + size
	if end > total {
		end = total
	}
	return items[from:end], total
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID int64, from, size int) ([]*Item, int, error) {
	items, total := window(r.filter(func(it *Item) bool { return it.OwnerID == ownerID }), from, size)
	return items, total, nil
}

func (r *memoryRepository) OwnerItemIDs(_ context.Context, ownerID int64) ([]int64, error) {
	items := r.filter(func(it *Item) bool { return it.OwnerID == ownerID })
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids, nil
}

func (r *memoryRepository) Search(_ context.Context, text string, from, size int) ([]*Item, int, error) {
	needle := strings.ToLower(text)
	items, total := window(r.filter(func(it *Item) bool {
		return it.Available &&
			(strings.Contains(strings.ToLower(it.Name), needle) ||
				strings.Contains(strings.ToLower(it.Description), needle))
	}), from, size)
	return items, total, nil
}

func (r *memoryRepository) Update(_ context.Context, it *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[it.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Name = it.Name
	stored.Description = it.Description
	stored.Available = it.Available
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memoryRepository) ListByRequestIDs(_ context.Context, requestIDs []int64) ([]*Item, error) {
	wanted := make(map[int64]struct{}, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = struct{}{}
	}
	return r.filter(func(it *Item) bool {
		if it.RequestID == nil {
			return false
		}
		_, ok := wanted[*it.RequestID]
		return ok
	}), nil
}

func (r *memoryRepository) ClearRequest(_ context.Context, requestID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range r.items {
		if it.RequestID != nil && *it.RequestID == requestID {
			it.RequestID = nil
		}
	}
	return nil
}
