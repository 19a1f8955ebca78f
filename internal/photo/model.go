package photo

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("photo not found")
	ErrItemNotFound     = apperror.NotFound("item not found")
	ErrPermissionDenied = apperror.Forbidden("only the item owner can manage its photos")
	ErrEmptyFile        = apperror.Validation("file is empty")
	ErrTooLarge         = apperror.Validation("file exceeds the upload limit")
	ErrUnsupportedType  = apperror.Validation("file must be a JPEG, PNG or GIF image")
	ErrTooManyPhotos    = apperror.Validation("item already has the maximum number of photos")
	ErrTooManyPixels    = apperror.Validation("image dimensions exceed the upload limit")
)

// Photo is an image attached to an item. The original and its thumbnail live in blob storage.
type Photo struct {
	ID            string
	ItemID        int64
	UploaderID    int64
	Filename      string
	ContentType   string
	Size          int64
	Width         int
	Height        int
	StoragePath   string
	ThumbnailPath string
	CreatedAt     time.Time
}

// URL returns the public path serving the original image.
func URL(id string) string {
	return "/v1/photos/" + id
}

// ThumbnailURL returns the public path serving the JPEG thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/photos/" + id + "/thumbnail"
}
