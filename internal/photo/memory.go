package photo

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	photos map[string]*Photo
}

// NewMemoryRepository returns an in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{photos: make(map[string]*Photo)}
}

func (r *memoryRepository) Create(_ context.Context, p *Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.CreatedAt = time.Now().UTC()
	stored := *p
	r.photos[p.ID] = &stored
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*Photo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.photos[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *memoryRepository) ListByItem(_ context.Context, itemID int64) ([]*Photo, error) {
	r.mu.RLock()
	var out []*Photo
	for _, p := range r.photos {
		if p.ItemID == itemID {
			cp := *p
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) CountByItem(_ context.Context, itemID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.photos {
		if p.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.photos, id)
	r.mu.Unlock()
	return nil
}
