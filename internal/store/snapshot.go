package store

import (
	"context"
	"fmt"

	"github.com/allocsoc/awesome-crawler/internal/snapshot"
)

// DefaultSnapshotKey is where the published snapshot lives.
const DefaultSnapshotKey = "data.json"

// SnapshotStore reads and writes the published snapshot under one key.
type SnapshotStore struct {
	objects ObjectStore
	key     string
}

func NewSnapshotStore(objects ObjectStore, key string) *SnapshotStore {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotStore{objects: objects, key: key}
}

func (s *SnapshotStore) Key() string { return s.key }

// Load returns the published snapshot. A missing object is reported as
// ErrNotFound (wrapped), a malformed one as a decode error.
func (s *SnapshotStore) Load(ctx context.Context) (snapshot.Snapshot, error) {
	data, err := s.objects.GetObject(ctx, s.key)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("failed to load snapshot %q: %w", s.key, err)
	}
	snap, err := snapshot.Deserialize(data)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("snapshot %q: %w", s.key, err)
	}
	return snap, nil
}

func (s *SnapshotStore) Save(ctx context.Context, snap snapshot.Snapshot) error {
	data, err := snapshot.Serialize(snap)
	if err != nil {
		return err
	}
	if err := s.objects.PutObject(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", s.key, err)
	}
	return nil
}
