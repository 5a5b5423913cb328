// Package store persists the workspace dataset as a single snapshot.
package store

import (
	"context"
	"sync"

	"github.com/noah-isme/backend-laundry/internal/laundry"
)

// Store loads and saves whole dataset snapshots. Load reports found=false when nothing
// has been saved yet.
type Store interface {
	Load(ctx context.Context) (ds *laundry.Dataset, found bool, err error)
	Save(ctx context.Context, ds *laundry.Dataset) error
	Ping(ctx context.Context) error
}

// Memory keeps the snapshot in process. Loaded and saved datasets are cloned.
type Memory struct {
	mu sync.RWMutex
	ds *laundry.Dataset
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) (*laundry.Dataset, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ds == nil {
		return nil, false, nil
	}
	return m.ds.Clone(), true, nil
}

func (m *Memory) Save(_ context.Context, ds *laundry.Dataset) error {
	m.mu.Lock()
	m.ds = ds.Clone()
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
