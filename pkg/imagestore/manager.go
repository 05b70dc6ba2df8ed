package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrImageRequired is returned when a store is attempted with an empty payload.
var ErrImageRequired = errors.New("Image is required")

// Manager owns the image lifecycle: normalize, persist under a generated
// name, and delete superseded or orphaned files.
type Manager struct {
	store  Store
	logger *logrus.Logger
}

func NewManager(store Store, logger *logrus.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

func newFileName() string {
	return fmt.Sprintf("logo-%d-%s.jpg", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Store normalizes the payload and persists it, returning the stored name.
func (m *Manager) Store(ctx context.Context, r io.Reader) (string, error) {
	if r == nil {
		return "", ErrImageRequired
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrImageRequired
	}
	normalized, err := Normalize(data)
	if err != nil {
		return "", err
	}
	name := newFileName()
	if err := m.store.Save(ctx, name, normalized); err != nil {
		return "", err
	}
	return name, nil
}

// Replace stores the new payload, then deletes the previous file. Deleting
// the old file is best effort: the new file already won.
func (m *Manager) Replace(ctx context.Context, prev string, r io.Reader) (string, error) {
	name, err := m.Store(ctx, r)
	if err != nil {
		return "", err
	}
	if prev != "" && prev != name {
		if err := m.store.Delete(ctx, prev); err != nil && m.logger != nil {
			m.logger.WithError(err).WithField("file", prev).Warn("delete superseded image failed")
		}
	}
	return name, nil
}

// Delete removes a stored file. A missing file or empty name is not an error.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	return m.store.Delete(ctx, name)
}
