package comment

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	comments map[int64]*Comment
}

// NewMemoryRepository returns an in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{comments: make(map[int64]*Comment)}
}

func (r *memoryRepository) Create(_ context.Context, c *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now().UTC()
	stored := *c
	r.comments[c.ID] = &stored
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id int64) (*Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *memoryRepository) ListByItems(_ context.Context, itemIDs []int64) ([]*Comment, error) {
	wanted := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	var out []*Comment
	for _, c := range r.comments {
		if _, ok := wanted[c.ItemID]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()

	// ids are assigned in creation order
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *memoryRepository) DeleteByItem(_ context.Context, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.comments {
		if c.ItemID == itemID {
			delete(r.comments, id)
		}
	}
	return nil
}
