package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RentalChecker answers whether a user has finished renting an item.
type RentalChecker interface {
	HasCompletedRental(ctx context.Context, itemID, bookerID int64, asOf time.Time) (bool, error)
}

// ItemOwners resolves the owner of an item. It returns ErrItemNotFound for unknown items.
type ItemOwners interface {
	OwnerOf(ctx context.Context, itemID int64) (int64, error)
}

// Authors resolves display names. It returns ErrAuthorNotFound for unknown users.
type Authors interface {
	NameOf(ctx context.Context, userID int64) (string, error)
}

type CreateRequest struct {
	ItemID   int64
	AuthorID int64
	Text     string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Comment, error)
	ListByItem(ctx context.Context, itemID int64) ([]*Comment, error)
	ListByItems(ctx context.Context, itemIDs []int64) (map[int64][]*Comment, error)
	Delete(ctx context.Context, itemID, commentID, callerID int64) error
	DeleteByItem(ctx context.Context, itemID int64) error
}

type service struct {
	repo    Repository
	rentals RentalChecker
	items   ItemOwners
	authors Authors
	logger  *zap.Logger
	now     func() time.Time
}

// Option customizes a service.
type Option func(*service)

// WithClock replaces the wall clock used for the eligibility check.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func NewService(
	repo Repository,
	rentals RentalChecker,
	items ItemOwners,
	authors Authors,
	logger *zap.Logger,
	opts ...Option,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		repo:    repo,
		rentals: rentals,
		items:   items,
		authors: authors,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Comment, error) {
	name, err := s.authors.NameOf(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.items.OwnerOf(ctx, req.ItemID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrTextRequired
	}

	ok, err := s.rentals.HasCompletedRental(ctx, req.ItemID, req.AuthorID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to check rental history: %w", err)
	}
	if !ok {
		return nil, ErrNotEligible
	}

	c := &Comment{
		ItemID:     req.ItemID,
		AuthorID:   req.AuthorID,
		AuthorName: name,
		Text:       text,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		zap.Int64("comment_id", c.ID),
		zap.Int64("item_id", c.ItemID),
		zap.Int64("author_id", c.AuthorID),
	)
	return c, nil
}

func (s *service) ListByItem(ctx context.Context, itemID int64) ([]*Comment, error) {
	if _, err := s.items.OwnerOf(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListByItems(ctx, []int64{itemID})
}

func (s *service) ListByItems(ctx context.Context, itemIDs []int64) (map[int64][]*Comment, error) {
	comments, err := s.repo.ListByItems(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]*Comment, len(itemIDs))
	for _, c := range comments {
		grouped[c.ItemID] = append(grouped[c.ItemID], c)
	}
	return grouped, nil
}

// Delete removes a comment of the item. The author and the owner of the item may delete it.
func (s *service) Delete(ctx context.Context, itemID, commentID, callerID int64) error {
	c, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.ItemID != itemID {
		return ErrNotFound
	}

	if c.AuthorID != callerID {
		ownerID, err := s.items.OwnerOf(ctx, c.ItemID)
		if err != nil && !errors.Is(err, ErrItemNotFound) {
			return err
		}
		if ownerID != callerID {
			return ErrPermissionDenied
		}
	}

	if err := s.repo.Delete(ctx, commentID); err != nil {
		return err
	}

	s.logger.Info("comment deleted", zap.Int64("comment_id", commentID), zap.Int64("caller_id", callerID))
	return nil
}

func (s *service) DeleteByItem(ctx context.Context, itemID int64) error {
	return s.repo.DeleteByItem(ctx, itemID)
}
