package app

import (
	"context"
	"errors"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/comment"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
	"github.com/nekogravitycat/shareit-backend/internal/photo"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// itemCatalog lets the booking, comment and photo modules read items without importing item.
type itemCatalog struct {
	repo item.Repository
}

func (c itemCatalog) GetItemRef(ctx context.Context, id int64) (*booking.ItemRef, error) {
	it, err := c.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, booking.ErrItemNotFound
		}
		return nil, err
	}
	return &booking.ItemRef{ID: it.ID, OwnerID: it.OwnerID, Available: it.Available}, nil
}

func (c itemCatalog) OwnerItemIDs(ctx context.Context, ownerID int64) ([]int64, error) {
	return c.repo.OwnerItemIDs(ctx, ownerID)
}

func (c itemCatalog) OwnerOf(ctx context.Context, itemID int64) (int64, error) {
	it, err := c.repo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return 0, comment.ErrItemNotFound
		}
		return 0, err
	}
	return it.OwnerID, nil
}

// itemAnswers exposes items listed in response to item requests.
type itemAnswers struct {
	repo item.Repository
}

func (a itemAnswers) ListByRequests(ctx context.Context, requestIDs []int64) ([]itemrequest.Answer, error) {
	items, err := a.repo.ListByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, err
	}
	out := make([]itemrequest.Answer, 0, len(items))
	for _, it := range items {
		out = append(out, itemrequest.Answer{
			ItemID:      it.ID,
			OwnerID:     it.OwnerID,
			RequestID:   *it.RequestID,
			Name:        it.Name,
			Description: it.Description,
			Available:   it.Available,
		})
	}
	return out, nil
}

func (a itemAnswers) DetachRequest(ctx context.Context, requestID int64) error {
	return a.repo.ClearRequest(ctx, requestID)
}

// userDirectory serves existence checks and display names from the user module.
type userDirectory struct {
	users user.Service
}

func (d userDirectory) Exists(ctx context.Context, id int64) (bool, error) {
	return d.users.Exists(ctx, id)
}

func (d userDirectory) NameOf(ctx context.Context, id int64) (string, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", comment.ErrAuthorNotFound
		}
		return "", err
	}
	return u.Name, nil
}

// userReferences mirrors the foreign keys on users for the memory store.
// Comments and photos need a booking or an item of the same user, so those two checks cover them.
type userReferences struct {
	items    item.Repository
	bookings booking.Repository
	requests itemrequest.Repository
}

func (r userReferences) InUse(ctx context.Context, userID int64) (bool, error) {
	owned, err := r.items.OwnerItemIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(owned) > 0 {
		return true, nil
	}

	booked, err := r.bookings.ListByBooker(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(booked) > 0 {
		return true, nil
	}

	requested, err := r.requests.ListByRequester(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(requested) > 0, nil
}

// rentalHistory answers comment eligibility from the booking engine.
type rentalHistory struct {
	bookings booking.Service
}

func (r rentalHistory) HasCompletedRental(ctx context.Context, itemID, bookerID int64, asOf time.Time) (bool, error) {
	return r.bookings.HasCompletedRental(ctx, itemID, bookerID, asOf)
}

var (
	_ booking.ItemCatalog   = itemCatalog{}
	_ booking.UserDirectory = userDirectory{}
	_ comment.ItemOwners    = itemCatalog{}
	_ comment.Authors       = userDirectory{}
	_ comment.RentalChecker = rentalHistory{}
	_ item.OwnerDirectory   = userDirectory{}
	_ photo.ItemOwners      = itemCatalog{}
	_ itemrequest.Answers   = itemAnswers{}
	_ itemrequest.Users     = userDirectory{}
	_ user.References       = userReferences{}
)
