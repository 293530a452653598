// Package assets places uploaded product images in a served location and
// hands back the filenames products refer to. It owns no database state.
package assets

import (
	"context"
	"errors"
	"io"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrInvalidName   = errors.New("invalid asset name")
)

// Object describes a stored asset.
type Object struct {
	Name        string
	Size        int64
	ContentType string
}

// Store is the backing storage for image assets. Names passed to a Store
// have already been validated with ValidName.
type Store interface {
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, *Object, error)
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}
