package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ItemCatalog resolves items for the engine. GetItemRef returns ErrItemNotFound for unknown ids.
type ItemCatalog interface {
	GetItemRef(ctx context.Context, id int64) (*ItemRef, error)
	OwnerItemIDs(ctx context.Context, ownerID int64) ([]int64, error)
}

// UserDirectory answers existence checks for users.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Publisher delivers lifecycle events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

type CreateRequest struct {
	ItemID   int64
	BookerID int64
	Start    time.Time
	End      time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Approve(ctx context.Context, bookingID, ownerID int64, approved bool) (*Booking, error)
	Cancel(ctx context.Context, bookingID, bookerID int64) (*Booking, error)
	Get(ctx context.Context, bookingID, requesterID int64) (*Booking, error)
	ListForBooker(ctx context.Context, bookerID int64, q ListQuery) (*Page, error)
	ListForOwner(ctx context.Context, ownerID int64, q ListQuery) (*Page, error)

	// HasCompletedRental reports whether the booker has an approved booking of the item that ended before asOf.
	HasCompletedRental(ctx context.Context, itemID, bookerID int64, asOf time.Time) (bool, error)

	LastAndNext(ctx context.Context, itemID int64) (ItemBookings, error)
	LastAndNextForItems(ctx context.Context, itemIDs []int64) (map[int64]ItemBookings, error)

	// PurgeItem removes every booking of an item that is being deleted.
	PurgeItem(ctx context.Context, itemID int64) error
}

// Option customizes a service.
type Option func(*service)

// WithClock replaces the wall clock used for temporal views.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithPublisher sets the lifecycle event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *service) {
		s.publisher = p
	}
}

type service struct {
	repo      Repository
	items     ItemCatalog
	users     UserDirectory
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, items ItemCatalog, users UserDirectory, logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		repo:   repo,
		items:  items,
		users:  users,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lookupItem returns nil, nil when the catalog does not know the item.
func (s *service) lookupItem(ctx context.Context, id int64) (*ItemRef, error) {
	item, err := s.items.GetItemRef(ctx, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve item %d: %w", id, err)
	}
	return item, nil
}

func (s *service) requireUser(ctx context.Context, id int64) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to resolve user %d: %w", id, err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	item, err := s.lookupItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	bookerExists := false
	if item != nil {
		bookerExists, err = s.users.Exists(ctx, req.BookerID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user %d: %w", req.BookerID, err)
		}
	}

	if err := checkCreate(item, bookerExists, req.BookerID, req.Start, req.End); err != nil {
		return nil, err
	}

	b := &Booking{
		ItemID:   req.ItemID,
		BookerID: req.BookerID,
		Start:    req.Start,
		End:      req.End,
		Status:   StatusWaiting,
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", b.ID),
		zap.Int64("item_id", b.ItemID),
		zap.Int64("booker_id", b.BookerID),
	)
	s.publish(ctx, EventCreated, b)
	return b, nil
}

func (s *service) Approve(ctx context.Context, bookingID, ownerID int64, approved bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	item, err := s.lookupItem(ctx, b.ItemID)
	if err != nil {
		return nil, err
	}

	target := decisionStatus(approved)
	if err := checkDecision(b, item, ownerID, target); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			s.logger.Warn("non-owner tried to decide on booking",
				zap.Int64("booking_id", bookingID),
				zap.Int64("user_id", ownerID),
			)
		}
		return nil, err
	}

	return s.transition(ctx, b, target)
}

func (s *service) Cancel(ctx context.Context, bookingID, bookerID int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := checkCancel(b, bookerID); err != nil {
		return nil, err
	}

	return s.transition(ctx, b, StatusCanceled)
}

// transition applies the status change as a compare-and-set against the status the checks saw.
func (s *service) transition(ctx context.Context, b *Booking, target Status) (*Booking, error) {
	updated, err := s.repo.UpdateStatus(ctx, b.ID, b.Status, target)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking status changed",
		zap.Int64("booking_id", updated.ID),
		zap.String("from", b.Status.String()),
		zap.String("to", updated.Status.String()),
		zap.Bool("final", updated.Status.IsTerminal()),
	)
	s.publish(ctx, eventForStatus(target), updated)
	return updated, nil
}

func (s *service) Get(ctx context.Context, bookingID, requesterID int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// The owner lookup is only needed when the requester is not the booker.
	var item *ItemRef
	if b.BookerID != requesterID {
		if item, err = s.lookupItem(ctx, b.ItemID); err != nil {
			return nil, err
		}
	}

	if err := checkVisible(b, item, requesterID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ListForBooker(ctx context.Context, bookerID int64, q ListQuery) (*Page, error) {
	if err := s.requireUser(ctx, bookerID); err != nil {
		return nil, err
	}
	state, err := ParseState(q.State)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListByBooker(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	return s.page(bookings, state, q), nil
}

func (s *service) ListForOwner(ctx context.Context, ownerID int64, q ListQuery) (*Page, error) {
	if err := s.requireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	state, err := ParseState(q.State)
	if err != nil {
		return nil, err
	}

	itemIDs, err := s.items.OwnerItemIDs(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of owner %d: %w", ownerID, err)
	}
	if len(itemIDs) == 0 {
		return s.page(nil, state, q), nil
	}

	bookings, err := s.repo.ListByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	return s.page(bookings, state, q), nil
}

func (s *service) page(bookings []*Booking, state State, q ListQuery) *Page {
	filtered := Classify(bookings, state, s.now())
	return &Page{
		Items: Paginate(filtered, q.From, q.Size),
		From:  q.From,
		Size:  q.Size,
		Total: len(filtered),
	}
}

func (s *service) HasCompletedRental(ctx context.Context, itemID, bookerID int64, asOf time.Time) (bool, error) {
	return s.repo.ExistsApprovedEnded(ctx, itemID, bookerID, asOf)
}

func (s *service) LastAndNext(ctx context.Context, itemID int64) (ItemBookings, error) {
	bookings, err := s.repo.ListByItemIDs(ctx, []int64{itemID})
	if err != nil {
		return ItemBookings{}, err
	}
	now := s.now()
	return ItemBookings{
		Last: LastApproved(bookings, now),
		Next: NextApproved(bookings, now),
	}, nil
}

func (s *service) LastAndNextForItems(ctx context.Context, itemIDs []int64) (map[int64]ItemBookings, error) {
	if len(itemIDs) == 0 {
		return map[int64]ItemBookings{}, nil
	}
	bookings, err := s.repo.ListByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	return GroupByItem(bookings, s.now()), nil
}

func (s *service) PurgeItem(ctx context.Context, itemID int64) error {
	bookings, err := s.repo.ListByItemIDs(ctx, []int64{itemID})
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if err := s.repo.Delete(ctx, b.ID); err != nil {
			return err
		}
	}
	if len(bookings) > 0 {
		s.logger.Info("purged bookings of deleted item",
			zap.Int64("item_id", itemID),
			zap.Int("count", len(bookings)),
		)
	}
	return nil
}
