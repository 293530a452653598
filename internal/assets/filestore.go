package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FileStore keeps assets as flat files under a public directory.
type FileStore struct {
	root string
}

// NewFileStore creates the asset directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the directory assets are written to.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.root, filepath.Base(name))
}

func (s *FileStore) Put(_ context.Context, name string, body io.Reader, _ int64, _ string) error {
	// O_EXCL keeps a colliding name from silently overwriting another upload.
	out, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create asset file: %w", err)
	}

	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		_ = os.Remove(s.path(name))
		return fmt.Errorf("failed to write asset file: %w", err)
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(s.path(name))
		return fmt.Errorf("failed to close asset file: %w", err)
	}
	return nil
}

func (s *FileStore) Open(_ context.Context, name string) (io.ReadCloser, *Object, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrAssetNotFound
		}
		return nil, nil, fmt.Errorf("failed to open asset: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to stat asset: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, ErrAssetNotFound
	}

	return f, &Object{Name: name, Size: info.Size(), ContentType: ContentType(name)}, nil
}

func (s *FileStore) Remove(_ context.Context, name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrAssetNotFound
		}
		return fmt.Errorf("failed to remove asset: %w", err)
	}
	return nil
}

func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !ValidName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
