package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.NotFound("user not found")
	ErrEmailAlreadyUsed   = apperror.Conflict("email already used")
	ErrUserInUse          = apperror.Conflict("user still owns items, bookings or comments")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrEmailRequired      = apperror.Validation("email is required")
	ErrNameRequired       = apperror.Validation("name is required")
	ErrPasswordTooShort   = apperror.Validation("password is too short")
)

// User is an identity in the rental catalog.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Filter defines filter options for listing users.
type Filter struct {
	Email string
	Name  string
	From  int
	Size  int
}

// UpdateRequest carries a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name  *string
	Email *string
}
