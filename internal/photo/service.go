package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/storage"
)

// ItemOwners resolves the owner of an item. A missing item is reported as a not-found error.
type ItemOwners interface {
	OwnerOf(ctx context.Context, itemID int64) (int64, error)
}

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Limits bounds uploads. MaxPixels caps width*height, since a small compressed
// file can still decode into a huge bitmap.
type Limits struct {
	MaxBytes   int64
	MaxPerItem int
	MaxPixels  int64
}

// DefaultLimits allows ten photos of up to 5 MiB and 40 megapixels each per item.
var DefaultLimits = Limits{MaxBytes: 5 << 20, MaxPerItem: 10, MaxPixels: 40_000_000}

type UploadRequest struct {
	ItemID     int64
	UploaderID int64
	Filename   string
	Content    io.Reader
}

type Service interface {
	// Upload stores an image for an owned item together with its thumbnail.
	Upload(ctx context.Context, req UploadRequest) (*Photo, error)
	Get(ctx context.Context, id string) (*Photo, error)
	ListByItem(ctx context.Context, itemID int64) ([]*Photo, error)
	// Open streams the original image. The caller closes the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
	OpenThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
	Delete(ctx context.Context, itemID int64, photoID string, callerID int64) error
	// DeleteByItem drops every photo of the item. Used when the item is deleted.
	DeleteByItem(ctx context.Context, itemID int64) error
}

type Option func(*service)

func WithLimits(l Limits) Option {
	return func(s *service) { s.limits = l }
}

type service struct {
	repo   Repository
	store  storage.Storage
	items  ItemOwners
	thumbs *storage.Thumbnailer
	limits Limits
	logger *zap.Logger
}

func NewService(repo Repository, store storage.Storage, items ItemOwners, logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		repo:   repo,
		store:  store,
		items:  items,
		thumbs: storage.NewThumbnailer(),
		limits: DefaultLimits,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Upload(ctx context.Context, req UploadRequest) (*Photo, error) {
	if err := s.requireOwner(ctx, req.ItemID, req.UploaderID); err != nil {
		return nil, err
	}

	if s.limits.MaxPerItem > 0 {
		n, err := s.repo.CountByItem(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}
		if n >= s.limits.MaxPerItem {
			return nil, ErrTooManyPhotos
		}
	}

	data, err := io.ReadAll(io.LimitReader(req.Content, s.limits.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > s.limits.MaxBytes {
		return nil, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return nil, ErrUnsupportedType
	}
	dim, err := s.thumbs.Decode(data)
	if err != nil {
		return nil, ErrUnsupportedType
	}
	if s.limits.MaxPixels > 0 && int64(dim.Width)*int64(dim.Height) > s.limits.MaxPixels {
		s.logger.Warn("rejected oversized image",
			zap.Int64("item_id", req.ItemID),
			zap.Int("width", dim.Width),
			zap.Int("height", dim.Height),
		)
		return nil, ErrTooManyPixels
	}
	thumb, err := s.thumbs.Thumbnail(data)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return nil, ErrUnsupportedType
		}
		return nil, err
	}

	id := uuid.NewString()
	// Shard by the id prefix to keep directories small.
	shard := id[:2]
	p := &Photo{
		ID:            id,
		ItemID:        req.ItemID,
		UploaderID:    req.UploaderID,
		Filename:      cleanFilename(req.Filename, id+mt.Extension()),
		ContentType:   mt.String(),
		Size:          int64(len(data)),
		Width:         dim.Width,
		Height:        dim.Height,
		StoragePath:   fmt.Sprintf("photos/%s/%s%s", shard, id, mt.Extension()),
		ThumbnailPath: fmt.Sprintf("photos/%s/%s_thumb.jpg", shard, id),
	}

	if err := s.store.Save(ctx, p.StoragePath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	if err := s.store.Save(ctx, p.ThumbnailPath, bytes.NewReader(thumb)); err != nil {
		s.removeBlobs(ctx, p.StoragePath)
		return nil, fmt.Errorf("failed to save thumbnail: %w", err)
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.removeBlobs(ctx, p.StoragePath, p.ThumbnailPath)
		return nil, err
	}

	s.logger.Info("photo uploaded",
		zap.String("photo_id", p.ID),
		zap.Int64("item_id", p.ItemID),
		zap.Int64("size", p.Size),
	)
	return p, nil
}

func (s *service) Get(ctx context.Context, id string) (*Photo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByItem(ctx context.Context, itemID int64) ([]*Photo, error) {
	if _, err := s.items.OwnerOf(ctx, itemID); err != nil {
		return nil, err
	}
	photos, err := s.repo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if photos == nil {
		photos = []*Photo{}
	}
	return photos, nil
}

func (s *service) Open(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	return s.open(ctx, id, func(p *Photo) string { return p.StoragePath })
}

func (s *service) OpenThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	return s.open(ctx, id, func(p *Photo) string { return p.ThumbnailPath })
}

func (s *service) open(ctx context.Context, id string, key func(*Photo) string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.store.Get(ctx, key(p))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Warn("photo blob missing", zap.String("photo_id", id))
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open photo: %w", err)
	}
	return stream, p, nil
}

func (s *service) Delete(ctx context.Context, itemID int64, photoID string, callerID int64) error {
	p, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return err
	}
	if p.ItemID != itemID {
		return ErrNotFound
	}
	if err := s.requireOwner(ctx, itemID, callerID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.removeBlobs(ctx, p.StoragePath, p.ThumbnailPath)

	s.logger.Info("photo deleted", zap.String("photo_id", p.ID), zap.Int64("item_id", itemID))
	return nil
}

func (s *service) DeleteByItem(ctx context.Context, itemID int64) error {
	photos, err := s.repo.ListByItem(ctx, itemID)
	if err != nil {
		return err
	}
	for _, p := range photos {
		if err := s.repo.Delete(ctx, p.ID); err != nil {
			return err
		}
		s.removeBlobs(ctx, p.StoragePath, p.ThumbnailPath)
	}
	return nil
}

func (s *service) requireOwner(ctx context.Context, itemID, callerID int64) error {
	ownerID, err := s.items.OwnerOf(ctx, itemID)
	if err != nil {
		return err
	}
	if ownerID != callerID {
		return ErrPermissionDenied
	}
	return nil
}

// removeBlobs is best effort; an orphaned blob is harmless.
func (s *service) removeBlobs(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to remove photo blob", zap.String("key", key), zap.Error(err))
		}
	}
}

func cleanFilename(name, fallback string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	if len(name) > 255 {
		name = name[len(name)-255:]
	}
	return name
}
