package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
)

func newTestService() Service {
	return NewService(NewMemoryRepository(), auth.NewBcryptPasswordHasherWithCost(4))
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "  Alice@Example.COM ", "password123", " Alice ")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.Name)
	assert.NotEqual(t, "password123", u.PasswordHash)

	logged, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		wantErr  error
	}{
		{"blank email", " ", "password123", "A", ErrEmailRequired},
		{"blank name", "a@b.c", "password123", "  ", ErrNameRequired},
		{"short password", "a@b.c", "short", "A", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, tt.userName)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, "dup@example.com", "password123", "First")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "DUP@example.com", "password123", "Second")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "bob@example.com", "password123", "Bob")
	require.NoError(t, err)
	other, err := svc.Register(ctx, "carol@example.com", "password123", "Carol")
	require.NoError(t, err)

	name := "Robert"
	updated, err := svc.Update(ctx, u.ID, UpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.Equal(t, "bob@example.com", updated.Email)

	taken := other.Email
	_, err = svc.Update(ctx, u.ID, UpdateRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	blank := " "
	_, err = svc.Update(ctx, u.ID, UpdateRequest{Name: &blank})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Update(ctx, 999, UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListExistsDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	for _, e := range []string{"a@x.io", "b@x.io", "c@y.io"} {
		_, err := svc.Register(ctx, e, "password123", "User "+e)
		require.NoError(t, err)
	}

	users, total, err := svc.List(ctx, Filter{Email: "x.io", Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 2)

	users, total, err = svc.List(ctx, Filter{From: 1, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, users, 1)
	assert.Equal(t, int64(2), users[0].ID)

	ok, err := svc.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Delete(ctx, 1))
	ok, err = svc.Exists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Delete(ctx, 1), ErrNotFound)
}

type fakeReferences map[int64]bool

func (f fakeReferences) InUse(_ context.Context, userID int64) (bool, error) {
	return f[userID], nil
}

func TestDeleteReferencedUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), auth.NewBcryptPasswordHasherWithCost(4), WithReferences(fakeReferences{1: true}))

	for _, e := range []string{"owner@x.io", "idle@x.io"} {
		_, err := svc.Register(ctx, e, "password123", "User")
		require.NoError(t, err)
	}

	assert.ErrorIs(t, svc.Delete(ctx, 1), ErrUserInUse)
	ok, err := svc.Exists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Delete(ctx, 2))
	assert.ErrorIs(t, svc.Delete(ctx, 2), ErrNotFound)
}
