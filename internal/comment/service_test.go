package comment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRentals map[[2]int64]bool

func (f fakeRentals) HasCompletedRental(_ context.Context, itemID, bookerID int64, _ time.Time) (bool, error) {
	return f[[2]int64{itemID, bookerID}], nil
}

type fakeOwners map[int64]int64

func (f fakeOwners) OwnerOf(_ context.Context, itemID int64) (int64, error) {
	owner, ok := f[itemID]
	if !ok {
		return 0, ErrItemNotFound
	}
	return owner, nil
}

type fakeAuthors map[int64]string

func (f fakeAuthors) NameOf(_ context.Context, userID int64) (string, error) {
	name, ok := f[userID]
	if !ok {
		return "", ErrAuthorNotFound
	}
	return name, nil
}

const (
	ownerID  = int64(1)
	renterID = int64(2)
	otherID  = int64(3)
	itemID   = int64(10)
)

func newTestService() Service {
	return NewService(
		NewMemoryRepository(),
		fakeRentals{{itemID, renterID}: true},
		fakeOwners{itemID: ownerID, 11: ownerID},
		fakeAuthors{ownerID: "Owner", renterID: "Renter", otherID: "Other"},
		nil,
	)
}

func TestCreateRequiresCompletedRental(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, err := svc.Create(ctx, CreateRequest{ItemID: itemID, AuthorID: renterID, Text: "  great drill "})
	require.NoError(t, err)
	assert.Equal(t, "great drill", c.Text)
	assert.Equal(t, "Renter", c.AuthorName)
	assert.NotZero(t, c.ID)

	_, err = svc.Create(ctx, CreateRequest{ItemID: itemID, AuthorID: otherID, Text: "never rented"})
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{"unknown author", CreateRequest{ItemID: itemID, AuthorID: 99, Text: "x"}, ErrAuthorNotFound},
		{"unknown item", CreateRequest{ItemID: 99, AuthorID: renterID, Text: "x"}, ErrItemNotFound},
		{"blank text", CreateRequest{ItemID: itemID, AuthorID: renterID, Text: "   "}, ErrTextRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestListByItems(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	first, err := svc.Create(ctx, CreateRequest{ItemID: itemID, AuthorID: renterID, Text: "first"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateRequest{ItemID: itemID, AuthorID: renterID, Text: "second"})
	require.NoError(t, err)

	list, err := svc.ListByItem(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	grouped, err := svc.ListByItems(ctx, []int64{itemID, 11})
	require.NoError(t, err)
	assert.Len(t, grouped[itemID], 2)
	assert.Empty(t, grouped[11])

	_, err = svc.ListByItem(ctx, 99)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDeleteAccess(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, err := svc.Create(ctx, CreateRequest{ItemID: itemID, AuthorID: renterID, Text: "hello"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, itemID, c.ID, otherID), ErrPermissionDenied)
	assert.ErrorIs(t, svc.Delete(ctx, 11, c.ID, renterID), ErrNotFound)

	// the item owner may moderate
	require.NoError(t, svc.Delete(ctx, itemID, c.ID, ownerID))
	assert.ErrorIs(t, svc.Delete(ctx, itemID, c.ID, ownerID), ErrNotFound)

	c, err = svc.Create(ctx, CreateRequest{ItemID: itemID, AuthorID: renterID, Text: "again"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, itemID, c.ID, renterID))
}

func TestDeleteByItem(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Create(ctx, CreateRequest{ItemID: itemID, AuthorID: renterID, Text: "gone soon"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByItem(ctx, itemID))

	grouped, err := svc.ListByItems(ctx, []int64{itemID})
	require.NoError(t, err)
	assert.Empty(t, grouped[itemID])
}
