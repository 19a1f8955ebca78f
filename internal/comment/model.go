package comment

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("comment not found")
	ErrItemNotFound     = apperror.NotFound("item not found")
	ErrAuthorNotFound   = apperror.NotFound("user not found")
	ErrTextRequired     = apperror.Validation("comment text is required")
	ErrNotEligible      = apperror.Validation("only users who completed a rental of the item may comment")
	ErrPermissionDenied = apperror.Forbidden("permission denied")
)

// Comment is feedback left on an item by a past renter.
type Comment struct {
	ID         int64
	ItemID     int64
	AuthorID   int64
	AuthorName string
	Text       string
	CreatedAt  time.Time
}
