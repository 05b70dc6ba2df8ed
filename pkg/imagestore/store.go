package imagestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists normalized images under their generated names.
type Store interface {
	Save(ctx context.Context, name string, data []byte) error
	// Delete is idempotent: deleting a missing file succeeds.
	Delete(ctx context.Context, name string) error
}

// DiskStore keeps images in a local directory, meant to be served
// statically by the HTTP layer.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(_ context.Context, name string, data []byte) error {
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}

func (s *DiskStore) Delete(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

var _ Store = (*DiskStore)(nil)
