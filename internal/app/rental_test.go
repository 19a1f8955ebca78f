package app

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHttp "github.com/nekogravitycat/shareit-backend/internal/booking/http"
	commentHttp "github.com/nekogravitycat/shareit-backend/internal/comment/http"
	itemHttp "github.com/nekogravitycat/shareit-backend/internal/item/http"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
	userHttp "github.com/nekogravitycat/shareit-backend/internal/user/http"
)

func ptr[T any](v T) *T { return &v }

func TestRentalFlow(t *testing.T) {
	a := newTestApp(t)

	owner, ownerToken := a.registerAndLogin(t, "Owner", "owner@shareit.dev")
	renter, renterToken := a.registerAndLogin(t, "Renter", "renter@shareit.dev")
	_, strangerToken := a.registerAndLogin(t, "Stranger", "stranger@shareit.dev")

	var itemID int64
	var bookingID int64
	var start, end time.Time

	t.Run("Owner lists an item", func(t *testing.T) {
		w := a.executeRequest(http.MethodPost, "/v1/items", itemHttp.CreateItemRequest{
			Name: "Drill", Description: "Cordless drill", Available: ptr(true),
		}, ownerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		it := decode[itemHttp.ItemResponse](t, w)
		assert.Equal(t, owner.ID, it.OwnerID)
		itemID = it.ID
	})

	t.Run("Search finds the item", func(t *testing.T) {
		w := a.executeRequest(http.MethodGet, "/v1/items/search?text=DRILL", nil, renterToken)
		require.Equal(t, http.StatusOK, w.Code)

		page := decode[response.PageResponse[itemHttp.ItemResponse]](t, w)
		require.Len(t, page.Items, 1)
		assert.Equal(t, itemID, page.Items[0].ID)
	})

	t.Run("Owner cannot book own item", func(t *testing.T) {
		s := time.Now().Add(time.Hour)
		w := a.executeRequest(http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingBody{
			ItemID: itemID, Start: s, End: s.Add(time.Hour),
		}, ownerToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Renter books and owner approves", func(t *testing.T) {
		start = time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		end = start.Add(48 * time.Hour)

		w := a.executeRequest(http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingBody{
			ItemID: itemID, Start: start, End: end,
		}, renterToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		b := decode[bookingHttp.BookingResponse](t, w)
		assert.Equal(t, "WAITING", b.Status)
		assert.Equal(t, renter.ID, b.BookerID)
		bookingID = b.ID

		w = a.executeRequest(http.MethodPatch, fmt.Sprintf("/v1/bookings/%d?approved=true", bookingID), nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "APPROVED", decode[bookingHttp.BookingResponse](t, w).Status)
	})

	t.Run("Approved booking cannot be canceled or read by a stranger", func(t *testing.T) {
		w := a.executeRequest(http.MethodDelete, fmt.Sprintf("/v1/bookings/%d", bookingID), nil, renterToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.executeRequest(http.MethodGet, fmt.Sprintf("/v1/bookings/%d", bookingID), nil, strangerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Owner sees the next booking on the item", func(t *testing.T) {
		w := a.executeRequest(http.MethodGet, fmt.Sprintf("/v1/items/%d", itemID), nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[itemHttp.ItemDetailResponse](t, w)
		require.NotNil(t, detail.NextBooking)
		assert.Equal(t, bookingID, detail.NextBooking.ID)
		assert.Nil(t, detail.LastBooking)

		w = a.executeRequest(http.MethodGet, fmt.Sprintf("/v1/items/%d", itemID), nil, renterToken)
		require.Equal(t, http.StatusOK, w.Code)
		detail = decode[itemHttp.ItemDetailResponse](t, w)
		assert.Nil(t, detail.NextBooking)
	})

	t.Run("Comment requires a finished rental", func(t *testing.T) {
		path := fmt.Sprintf("/v1/items/%d/comments", itemID)

		w := a.executeRequest(http.MethodPost, path, commentHttp.CreateCommentRequest{Text: "Great drill"}, renterToken)
		assert.Equal(t, http.StatusBadRequest, w.Code, "rental still in the future")

		a.clock.Advance(4 * 24 * time.Hour)

		w = a.executeRequest(http.MethodPost, path, commentHttp.CreateCommentRequest{Text: "Great drill"}, renterToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		c := decode[commentHttp.CommentResponse](t, w)
		assert.Equal(t, "Renter", c.AuthorName)

		w = a.executeRequest(http.MethodPost, path, commentHttp.CreateCommentRequest{Text: "Never used it"}, strangerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.executeRequest(http.MethodGet, fmt.Sprintf("/v1/items/%d", itemID), nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[itemHttp.ItemDetailResponse](t, w)
		require.Len(t, detail.Comments, 1)
		require.NotNil(t, detail.LastBooking)
		assert.Equal(t, bookingID, detail.LastBooking.ID)
		assert.Nil(t, detail.NextBooking)
	})

	t.Run("Past view lists the finished rental", func(t *testing.T) {
		w := a.executeRequest(http.MethodGet, "/v1/bookings?state=PAST", nil, renterToken)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		require.Len(t, page.Items, 1)
		assert.Equal(t, bookingID, page.Items[0].ID)

		w = a.executeRequest(http.MethodGet, "/v1/bookings/owner?state=current", nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[response.PageResponse[bookingHttp.BookingResponse]](t, w).Items)
	})

	t.Run("Deleting the item removes its bookings", func(t *testing.T) {
		w := a.executeRequest(http.MethodDelete, fmt.Sprintf("/v1/items/%d", itemID), nil, renterToken)
		assert.Equal(t, http.StatusNotFound, w.Code, "non-owners cannot see the item to delete it")

		w = a.executeRequest(http.MethodDelete, fmt.Sprintf("/v1/items/%d", itemID), nil, ownerToken)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = a.executeRequest(http.MethodGet, fmt.Sprintf("/v1/bookings/%d", bookingID), nil, renterToken)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = a.executeRequest(http.MethodGet, "/v1/bookings", nil, renterToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, decode[response.PageResponse[bookingHttp.BookingResponse]](t, w).Total)
	})
}

func TestActingAsHeader(t *testing.T) {
	a := newTestApp(t)

	owner, _ := a.registerAndLogin(t, "Owner", "owner@shareit.dev")
	renter, _ := a.registerAndLogin(t, "Renter", "renter@shareit.dev")

	w := a.executeAs(http.MethodPost, "/v1/items", itemHttp.CreateItemRequest{
		Name: "Tent", Description: "Two person tent", Available: ptr(true),
	}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	it := decode[itemHttp.ItemResponse](t, w)

	s := time.Now().Add(2 * time.Hour)
	w = a.executeAs(http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingBody{
		ItemID: it.ID, Start: s, End: s.Add(time.Hour),
	}, renter.ID)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decode[bookingHttp.BookingResponse](t, w)

	w = a.executeAs(http.MethodPatch, fmt.Sprintf("/v1/bookings/%d?approved=false", b.ID), nil, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "REJECTED", decode[bookingHttp.BookingResponse](t, w).Status)

	w = a.executeAs(http.MethodGet, "/v1/bookings?state=REJECTED", nil, renter.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[response.PageResponse[bookingHttp.BookingResponse]](t, w).Total)

	w = a.executeAs(http.MethodGet, "/v1/bookings", nil, 999)
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown acting user")
}

func TestItemUpdateAvailability(t *testing.T) {
	a := newTestApp(t)

	_, ownerToken := a.registerAndLogin(t, "Owner", "owner@shareit.dev")
	_, renterToken := a.registerAndLogin(t, "Renter", "renter@shareit.dev")

	w := a.executeRequest(http.MethodPost, "/v1/items", itemHttp.CreateItemRequest{
		Name: "Kayak", Description: "Single seat", Available: ptr(true),
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	it := decode[itemHttp.ItemResponse](t, w)
	path := fmt.Sprintf("/v1/items/%d", it.ID)

	w = a.executeRequest(http.MethodPatch, path, itemHttp.UpdateItemRequest{Available: ptr(false)}, renterToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.executeRequest(http.MethodPatch, path, itemHttp.UpdateItemRequest{Available: ptr(false)}, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[itemHttp.ItemResponse](t, w)
	assert.False(t, updated.Available)
	assert.Equal(t, "Kayak", updated.Name)

	s := time.Now().Add(time.Hour)
	w = a.executeRequest(http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingBody{
		ItemID: it.ID, Start: s, End: s.Add(time.Hour),
	}, renterToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.executeRequest(http.MethodGet, "/v1/items/search?text=kayak", nil, renterToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[response.PageResponse[itemHttp.ItemResponse]](t, w).Items)

	w = a.executeRequest(http.MethodGet, "/v1/items", nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[response.PageResponse[itemHttp.ItemDetailResponse]](t, w).Total)
}

func TestUserEndpoints(t *testing.T) {
	a := newTestApp(t)

	alice, aliceToken := a.registerAndLogin(t, "Alice", "alice@shareit.dev")
	bob, bobToken := a.registerAndLogin(t, "Bob", "bob@shareit.dev")

	w := a.executeRequest(http.MethodPost, "/v1/auth/register", userHttp.RegisterRequest{
		Email: "ALICE@shareit.dev", Password: "password123", Name: "Imposter",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.executeRequest(http.MethodPost, "/v1/auth/login", userHttp.LoginRequest{
		Email: "alice@shareit.dev", Password: "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.executeRequest(http.MethodGet, "/v1/me", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, alice.ID, decode[userHttp.MeResponse](t, w).User.ID)

	w = a.executeRequest(http.MethodGet, "/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.executeRequest(http.MethodPatch, fmt.Sprintf("/v1/users/%d", bob.ID), userHttp.UpdateUserRequest{Name: ptr("Robert")}, aliceToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.executeRequest(http.MethodPatch, fmt.Sprintf("/v1/users/%d", bob.ID), userHttp.UpdateUserRequest{Name: ptr("Robert")}, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Robert", decode[userHttp.MeResponse](t, w).User.Name)

	w = a.executeRequest(http.MethodGet, "/v1/users?name=rob", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[response.PageResponse[userHttp.UserResponse]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, bob.ID, page.Items[0].ID)

	w = a.executeRequest(http.MethodDelete, fmt.Sprintf("/v1/users/%d", bob.ID), nil, bobToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.executeRequest(http.MethodGet, fmt.Sprintf("/v1/users/%d", bob.ID), nil, aliceToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	a := newTestApp(t)

	w := a.executeRequest(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUserDeleteWhileReferenced(t *testing.T) {
	a := newTestApp(t)

	owner, ownerToken := a.registerAndLogin(t, "Owner", "owner@shareit.dev")
	renter, renterToken := a.registerAndLogin(t, "Renter", "renter@shareit.dev")
	asker, askerToken := a.registerAndLogin(t, "Asker", "asker@shareit.dev")

	w := a.executeRequest(http.MethodPost, "/v1/items", itemHttp.CreateItemRequest{
		Name: "Tent", Description: "Two person tent", Available: ptr(true),
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	it := decode[itemHttp.ItemResponse](t, w)

	s := time.Now().Add(time.Hour)
	w = a.executeRequest(http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingBody{
		ItemID: it.ID, Start: s, End: s.Add(time.Hour),
	}, renterToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.executeRequest(http.MethodPost, "/v1/requests", map[string]string{"description": "Need a kayak"}, askerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("Owner of an item", func(t *testing.T) {
		w := a.executeRequest(http.MethodDelete, fmt.Sprintf("/v1/users/%d", owner.ID), nil, ownerToken)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = a.executeRequest(http.MethodGet, fmt.Sprintf("/v1/users/%d", owner.ID), nil, renterToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Booker", func(t *testing.T) {
		w := a.executeRequest(http.MethodDelete, fmt.Sprintf("/v1/users/%d", renter.ID), nil, renterToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Requester", func(t *testing.T) {
		w := a.executeRequest(http.MethodDelete, fmt.Sprintf("/v1/users/%d", asker.ID), nil, askerToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Owner after deleting the item", func(t *testing.T) {
		w := a.executeRequest(http.MethodDelete, fmt.Sprintf("/v1/items/%d", it.ID), nil, ownerToken)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = a.executeRequest(http.MethodDelete, fmt.Sprintf("/v1/users/%d", owner.ID), nil, ownerToken)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = a.executeRequest(http.MethodDelete, fmt.Sprintf("/v1/users/%d", renter.ID), nil, renterToken)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestBookingStartFollowsEngineClock(t *testing.T) {
	a := newTestApp(t)

	_, ownerToken := a.registerAndLogin(t, "Owner", "owner@shareit.dev")
	_, renterToken := a.registerAndLogin(t, "Renter", "renter@shareit.dev")

	w := a.executeRequest(http.MethodPost, "/v1/items", itemHttp.CreateItemRequest{
		Name: "Kayak", Description: "Single seat", Available: ptr(true),
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	it := decode[itemHttp.ItemResponse](t, w)

	s := time.Now().Add(24 * time.Hour)
	body := bookingHttp.CreateBookingBody{ItemID: it.ID, Start: s, End: s.Add(time.Hour)}

	a.clock.Advance(48 * time.Hour)

	w = a.executeRequest(http.MethodPost, "/v1/bookings", body, renterToken)
	assert.Equal(t, http.StatusBadRequest, w.Code, "start is in the past for the engine")

	later := a.clock.Now().Add(time.Hour)
	w = a.executeRequest(http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingBody{
		ItemID: it.ID, Start: later, End: later.Add(time.Hour),
	}, renterToken)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
