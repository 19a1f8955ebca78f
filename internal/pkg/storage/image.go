package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// ErrNotImage is returned when the content cannot be decoded as an image.
var ErrNotImage = errors.New("storage: content is not a decodable image")

// Thumbnailer renders bounded JPEG previews.
type Thumbnailer struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewThumbnailer returns a Thumbnailer fitting images into a 200x200 box.
func NewThumbnailer() *Thumbnailer {
	return &Thumbnailer{MaxWidth: 200, MaxHeight: 200, Quality: 80}
}

// Decode checks that content is an image and returns its dimensions.
func (t *Thumbnailer) Decode(content []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return cfg, nil
}

// Thumbnail fits the image into the configured box, honouring EXIF orientation,
// and encodes the result as JPEG.
func (t *Thumbnailer) Thumbnail(content []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	var thumb image.Image = img
	b := img.Bounds()
	if b.Dx() > t.MaxWidth || b.Dy() > t.MaxHeight {
		thumb = imaging.Fit(img, t.MaxWidth, t.MaxHeight, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, thumb, imaging.JPEG, imaging.JPEGQuality(t.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
