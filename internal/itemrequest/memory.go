package itemrequest

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	requests map[int64]*Request
}

// NewMemoryRepository returns an in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{requests: make(map[int64]*Request)}
}

func (r *memoryRepository) Create(_ context.Context, req *Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	req.ID = r.nextID
	req.CreatedAt = time.Now().UTC()
	stored := *req
	r.requests[req.ID] = &stored
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id int64) (*Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *req
	return &out, nil
}

// newestFirst collects matching requests ordered by creation time, then id, descending.
func (r *memoryRepository) newestFirst(match func(*Request) bool) []*Request {
	r.mu.RLock()
	var out []*Request
	for _, req := range r.requests {
		if match(req) {
			cp := *req
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *memoryRepository) ListByRequester(_ context.Context, requesterID int64) ([]*Request, error) {
	return r.newestFirst(func(req *Request) bool { return req.RequesterID == requesterID }), nil
}

func (r *memoryRepository) ListExcept(_ context.Context, requesterID int64, from, size int) ([]*Request, int, error) {
	all := r.newestFirst(func(req *Request) bool { return req.RequesterID != requesterID })
	total := len(all)
	if from >= total {
		return nil, total, nil
	}
	end := from + size
	if end > total {
		end = total
	}
	return all[from:end], total, nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[id]; !ok {
		return ErrNotFound
	}
	delete(r.requests, id)
	return nil
}
