package itemrequest

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.NotFound("item request not found")
	ErrUserNotFound        = apperror.NotFound("user not found")
	ErrDescriptionRequired = apperror.Validation("description is required")
	ErrPermissionDenied    = apperror.Forbidden("only the requester can delete an item request")
)

// Request is a user's public ask for an item nobody has listed yet.
type Request struct {
	ID          int64
	RequesterID int64
	Description string
	CreatedAt   time.Time
}

// Answer is an item another user listed in response to a request.
type Answer struct {
	ItemID      int64
	OwnerID     int64
	RequestID   int64
	Name        string
	Description string
	Available   bool
}

// View is a request together with the items answering it.
type View struct {
	Request *Request
	Answers []Answer
}
