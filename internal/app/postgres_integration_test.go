//go:build integration

package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/shareit-backend/internal/booking/http"
	"github.com/nekogravitycat/shareit-backend/internal/db"
	itemHttp "github.com/nekogravitycat/shareit-backend/internal/item/http"
	itemRequestHttp "github.com/nekogravitycat/shareit-backend/internal/itemrequest/http"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// startPostgres runs a throwaway Postgres container and returns a pool with the schema applied.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "shareit_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/shareit_test?sslmode=disable", host, port.Port())

	var pool *pgxpool.Pool
	require.Eventually(t, func() bool {
		p, err := db.NewPool(ctx, dsn, 8)
		if err != nil {
			return false
		}
		pool = p
		return true
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")
	t.Cleanup(pool.Close)

	require.NoError(t, db.EnsureSchema(ctx, pool))
	// Applying twice must be harmless.
	require.NoError(t, db.EnsureSchema(ctx, pool))
	return pool
}

func newPostgresApp(t *testing.T, pool *pgxpool.Pool) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &testClock{}
	container := NewContainer(Config{
		DBPool:     pool,
		JWTSecret:  "test-secret",
		JWTTTL:     30 * time.Minute,
		BcryptCost: 4,
		HeaderAuth: auth.HeaderOptions{Trust: true, Name: actingHeader},
		Clock:      clock.Now,
	})
	return &testApp{router: container.Router, clock: clock}
}

func TestPostgresStorage(t *testing.T) {
	pool := startPostgres(t)
	a := newPostgresApp(t, pool)
	ctx := context.Background()

	owner, ownerToken := a.registerAndLogin(t, "Owner", "owner@shareit.dev")
	renter, _ := a.registerAndLogin(t, "Renter", "renter@shareit.dev")

	w := a.executeAs(http.MethodPost, "/v1/items", itemHttp.CreateItemRequest{
		Name: "Ladder", Description: "Aluminium ladder", Available: ptr(true),
	}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	it := decode[itemHttp.ItemResponse](t, w)

	t.Run("Health reports the database", func(t *testing.T) {
		w := a.executeRequest(http.MethodGet, "/healthz", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Unique email is enforced by the database", func(t *testing.T) {
		repo := user.NewPgxRepository(pool)
		err := repo.Create(ctx, &user.User{Name: "Dup", Email: "owner@shareit.dev", PasswordHash: "x"})
		assert.ErrorIs(t, err, user.ErrEmailAlreadyUsed)
	})

	t.Run("Foreign keys map to not found", func(t *testing.T) {
		repo := booking.NewPgxRepository(pool)
		start := time.Now().Add(time.Hour).UTC()

		err := repo.Save(ctx, &booking.Booking{ItemID: 9999, BookerID: renter.ID, Start: start, End: start.Add(time.Hour), Status: booking.StatusWaiting})
		assert.ErrorIs(t, err, booking.ErrItemNotFound)

		err = repo.Save(ctx, &booking.Booking{ItemID: it.ID, BookerID: 9999, Start: start, End: start.Add(time.Hour), Status: booking.StatusWaiting})
		assert.ErrorIs(t, err, booking.ErrUserNotFound)
	})

	t.Run("Concurrent approvals race on the row", func(t *testing.T) {
		start := time.Now().Add(24 * time.Hour).UTC()
		w := a.executeAs(http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingBody{
			ItemID: it.ID, Start: start, End: start.Add(time.Hour),
		}, renter.ID)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		b := decode[bookingHttp.BookingResponse](t, w)

		const workers = 8
		codes := make([]int, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				approved := i%2 == 0
				rec := a.executeAs(http.MethodPatch, fmt.Sprintf("/v1/bookings/%d?approved=%t", b.ID, approved), nil, owner.ID)
				codes[i] = rec.Code
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, c := range codes {
			if c == http.StatusOK {
				ok++
			} else {
				assert.Equal(t, http.StatusBadRequest, c)
			}
		}
		assert.Equal(t, 1, ok)
	})

	t.Run("Finished rental unlocks comments", func(t *testing.T) {
		start := time.Now().Add(2 * time.Hour).UTC()
		w := a.executeAs(http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingBody{
			ItemID: it.ID, Start: start, End: start.Add(time.Hour),
		}, renter.ID)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		b := decode[bookingHttp.BookingResponse](t, w)

		w = a.executeAs(http.MethodPatch, fmt.Sprintf("/v1/bookings/%d?approved=true", b.ID), nil, owner.ID)
		require.Equal(t, http.StatusOK, w.Code)

		repo := booking.NewPgxRepository(pool)
		ok, err := repo.ExistsApprovedEnded(ctx, it.ID, renter.ID, start.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, ok, "end must be strictly before asOf")

		a.clock.Advance(3 * 24 * time.Hour)

		path := fmt.Sprintf("/v1/items/%d/comments", it.ID)
		w = a.executeAs(http.MethodPost, path, map[string]string{"text": "Sturdy"}, renter.ID)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = a.executeAs(http.MethodGet, fmt.Sprintf("/v1/items/%d", it.ID), nil, owner.ID)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[itemHttp.ItemDetailResponse](t, w)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "Renter", detail.Comments[0].AuthorName)
		require.NotNil(t, detail.LastBooking)
	})

	t.Run("Item requests link answering items", func(t *testing.T) {
		w := a.executeAs(http.MethodPost, "/v1/requests", map[string]string{"description": "Need a wheelbarrow"}, renter.ID)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		req := decode[itemRequestHttp.RequestResponse](t, w)

		w = a.executeAs(http.MethodPost, "/v1/items", itemHttp.CreateItemRequest{
			Name: "Wheelbarrow", Description: "Steel", Available: ptr(true), RequestID: &req.ID,
		}, owner.ID)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		answer := decode[itemHttp.ItemResponse](t, w)

		w = a.executeAs(http.MethodGet, fmt.Sprintf("/v1/requests/%d", req.ID), nil, owner.ID)
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[itemRequestHttp.RequestResponse](t, w)
		require.Len(t, got.Items, 1)
		assert.Equal(t, answer.ID, got.Items[0].ID)

		w = a.executeAs(http.MethodDelete, fmt.Sprintf("/v1/requests/%d", req.ID), nil, renter.ID)
		require.Equal(t, http.StatusNoContent, w.Code)

		var linked *int64
		require.NoError(t, pool.QueryRow(ctx, `SELECT request_id FROM public.items WHERE id = $1`, answer.ID).Scan(&linked))
		assert.Nil(t, linked)
	})

	t.Run("Users with bookings cannot be deleted", func(t *testing.T) {
		w := a.executeAs(http.MethodDelete, fmt.Sprintf("/v1/users/%d", renter.ID), nil, renter.ID)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Photos are recorded in the database", func(t *testing.T) {
		w := a.uploadPhoto(t, it.ID, "ladder.png", samplePNG(t), ownerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var n int
		require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM public.item_photos WHERE item_id = $1`, it.ID).Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("Deleting the item cascades through its bookings, comments and photos", func(t *testing.T) {
		w := a.executeAs(http.MethodDelete, fmt.Sprintf("/v1/items/%d", it.ID), nil, owner.ID)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		var n int
		require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM public.bookings WHERE item_id = $1`, it.ID).Scan(&n))
		assert.Zero(t, n)
		require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM public.comments WHERE item_id = $1`, it.ID).Scan(&n))
		assert.Zero(t, n)
		require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM public.item_photos WHERE item_id = $1`, it.ID).Scan(&n))
		assert.Zero(t, n)

		w = a.executeAs(http.MethodDelete, fmt.Sprintf("/v1/users/%d", renter.ID), nil, renter.ID)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
