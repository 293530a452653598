package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNoFiles       = errors.New("at least one image is required")
	ErrTooManyFiles  = errors.New("too many images")
	ErrMissingUpload = errors.New("upload has no content")
)

// DefaultMaxFiles is the upload cap used when none is configured.
const DefaultMaxFiles = 5

// Upload is one incoming file.
type Upload struct {
	Name        string
	Body        io.Reader
	Size        int64
	ContentType string
}

// Handler assigns stored names to uploads and writes them to a Store.
type Handler struct {
	store    Store
	maxFiles int
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a Handler accepting at most maxFiles uploads per call.
func NewHandler(store Store, maxFiles int, logger *zap.Logger) *Handler {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &Handler{
		store:    store,
		maxFiles: maxFiles,
		logger:   logger,
		now:      time.Now,
	}
}

// MaxFiles returns the per-request upload cap.
func (h *Handler) MaxFiles() int {
	return h.maxFiles
}

// StoreAll writes every upload and returns the stored names in upload
// order. Nothing is left behind when any write fails.
func (h *Handler) StoreAll(ctx context.Context, uploads []Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}
	if len(uploads) > h.maxFiles {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooManyFiles, len(uploads), h.maxFiles)
	}

	names := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		name, err := h.put(ctx, upload)
		if err != nil {
			h.RemoveAll(ctx, names)
			return nil, err
		}
		names = append(names, name)
	}

	return names, nil
}

// Replace writes a single upload and returns a one-element name list that
// callers use in place of a product's previous images. The superseded
// files are left in place.
func (h *Handler) Replace(ctx context.Context, upload Upload) ([]string, error) {
	name, err := h.put(ctx, upload)
	if err != nil {
		return nil, err
	}
	return []string{name}, nil
}

// Open returns a reader for a stored asset.
func (h *Handler) Open(ctx context.Context, name string) (io.ReadCloser, *Object, error) {
	if !ValidName(name) {
		return nil, nil, ErrInvalidName
	}
	return h.store.Open(ctx, name)
}

// RemoveAll deletes the named assets, logging failures.
func (h *Handler) RemoveAll(ctx context.Context, names []string) {
	for _, name := range names {
		if err := h.store.Remove(ctx, name); err != nil && !errors.Is(err, ErrAssetNotFound) {
			h.logger.Warn("Failed to remove asset", zap.String("asset", name), zap.Error(err))
		}
	}
}

// Orphans lists stored assets that are not in the referenced set.
func (h *Handler) Orphans(ctx context.Context, referenced map[string]struct{}) ([]string, error) {
	stored, err := h.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var orphans []string
	for _, name := range stored {
		if _, ok := referenced[name]; !ok {
			orphans = append(orphans, name)
		}
	}
	return orphans, nil
}

func (h *Handler) put(ctx context.Context, upload Upload) (string, error) {
	if upload.Body == nil {
		return "", ErrMissingUpload
	}

	name := NewFilename(upload.Name, h.now())
	if err := h.store.Put(ctx, name, upload.Body, upload.Size, upload.ContentType); err != nil {
		return "", fmt.Errorf("failed to store %q: %w", upload.Name, err)
	}

	h.logger.Debug("Stored asset",
		zap.String("asset", name),
		zap.String("original", upload.Name),
		zap.Int64("size", upload.Size),
	)
	return name, nil
}
