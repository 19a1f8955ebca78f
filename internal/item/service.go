package item

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/comment"
)

// OwnerDirectory answers whether a prospective owner exists.
type OwnerDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// PhotoCleaner drops the photos of a deleted item.
type PhotoCleaner interface {
	DeleteByItem(ctx context.Context, itemID int64) error
}

// RequestDirectory confirms that an item request exists.
type RequestDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Option func(*service)

// WithRequests lets Create link items to item requests.
func WithRequests(d RequestDirectory) Option {
	return func(s *service) { s.requests = d }
}

// WithPhotos makes Delete remove the item's photos as well.
func WithPhotos(p PhotoCleaner) Option {
	return func(s *service) { s.photos = p }
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Item, error)
	// Get returns the item with its comments; the owner also sees the last and next approved bookings.
	Get(ctx context.Context, itemID, requesterID int64) (*View, error)
	ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*View, int, error)
	// Search returns available items matching text. Blank text matches nothing.
	Search(ctx context.Context, text string, from, size int) ([]*Item, int, error)
	// Update applies a partial update. Callers other than the owner get ErrNotFound.
	Update(ctx context.Context, itemID, callerID int64, req UpdateRequest) (*Item, error)
	// Delete removes an owned item together with its bookings, comments and photos.
	Delete(ctx context.Context, itemID, callerID int64) error
}

type service struct {
	repo     Repository
	owners   OwnerDirectory
	bookings booking.Service
	comments comment.Service
	photos   PhotoCleaner
	requests RequestDirectory
	logger   *zap.Logger
}

func NewService(
	repo Repository,
	owners OwnerDirectory,
	bookings booking.Service,
	comments comment.Service,
	logger *zap.Logger,
	opts ...Option,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		repo:     repo,
		owners:   owners,
		bookings: bookings,
		comments: comments,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Item, error) {
	ok, err := s.owners.Exists(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve owner %d: %w", req.OwnerID, err)
	}
	if !ok {
		return nil, ErrOwnerNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	if req.RequestID != nil {
		if err := s.requireRequest(ctx, *req.RequestID); err != nil {
			return nil, err
		}
	}

	it := &Item{
		OwnerID:     req.OwnerID,
		Name:        name,
		Description: description,
		Available:   req.Available,
		RequestID:   req.RequestID,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("item created", zap.Int64("item_id", it.ID), zap.Int64("owner_id", it.OwnerID))
	return it, nil
}

func (s *service) Get(ctx context.Context, itemID, requesterID int64) (*View, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	view := &View{Item: it}

	if it.OwnerID == requesterID {
		nb, err := s.bookings.LastAndNext(ctx, itemID)
		if err != nil {
			return nil, err
		}
		view.LastBooking, view.NextBooking = nb.Last, nb.Next
	}

	grouped, err := s.comments.ListByItems(ctx, []int64{itemID})
	if err != nil {
		return nil, err
	}
	view.Comments = grouped[itemID]

	return view, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*View, int, error) {
	items, total, err := s.repo.ListByOwner(ctx, ownerID, from, size)
	if err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return []*View{}, total, nil
	}

	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	// One batched lookup each for bookings and comments.
	timeline, err := s.bookings.LastAndNextForItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	comments, err := s.comments.ListByItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*View, len(items))
	for i, it := range items {
		nb := timeline[it.ID]
		views[i] = &View{
			Item:        it,
			LastBooking: nb.Last,
			NextBooking: nb.Next,
			Comments:    comments[it.ID],
		}
	}
	return views, total, nil
}

func (s *service) Search(ctx context.Context, text string, from, size int) ([]*Item, int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*Item{}, 0, nil
	}
	return s.repo.Search(ctx, text, from, size)
}

// owned loads the item and hides it from anyone but its owner.
func (s *service) owned(ctx context.Context, itemID, callerID int64) (*Item, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != callerID {
		return nil, ErrNotFound
	}
	return it, nil
}

func (s *service) Update(ctx context.Context, itemID, callerID int64, req UpdateRequest) (*Item, error) {
	it, err := s.owned(ctx, itemID, callerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		it.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, ErrDescriptionRequired
		}
		it.Description = description
	}
	if req.Available != nil {
		it.Available = *req.Available
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) Delete(ctx context.Context, itemID, callerID int64) error {
	if _, err := s.owned(ctx, itemID, callerID); err != nil {
		return err
	}

	if err := s.bookings.PurgeItem(ctx, itemID); err != nil {
		return err
	}
	if err := s.comments.DeleteByItem(ctx, itemID); err != nil {
		return err
	}
	if s.photos != nil {
		if err := s.photos.DeleteByItem(ctx, itemID); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return err
	}

	s.logger.Info("item deleted", zap.Int64("item_id", itemID), zap.Int64("owner_id", callerID))
	return nil
}

func (s *service) requireRequest(ctx context.Context, requestID int64) error {
	if s.requests == nil {
		return ErrRequestNotFound
	}
	ok, err := s.requests.Exists(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to resolve item request %d: %w", requestID, err)
	}
	if !ok {
		return ErrRequestNotFound
	}
	return nil
}
