package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-laundry/internal/laundry"
)

// Workspace serialises read-modify-write updates of the dataset and hands out
// independent snapshots to readers.
type Workspace struct {
	mu       sync.Mutex
	store    Store
	locker   Locker
	lockKey  string
	settings laundry.Settings
	logger   zerolog.Logger
}

// WorkspaceConfig groups Workspace dependencies.
type WorkspaceConfig struct {
	Store Store
	// Locker is optional; set it when several processes share a Redis snapshot.
	Locker  Locker
	LockKey string
	// Settings seed an empty workspace.
	Settings laundry.Settings
	Logger   zerolog.Logger
}

func NewWorkspace(cfg WorkspaceConfig) (*Workspace, error) {
	if cfg.Store == nil {
		return nil, errors.New("store: workspace requires a store")
	}
	settings := cfg.Settings
	if settings.Currency == "" {
		settings = laundry.DefaultSettings()
	}
	key := cfg.LockKey
	if key == "" {
		key = DefaultKey
	}
	return &Workspace{
		store:    cfg.Store,
		locker:   cfg.Locker,
		lockKey:  key,
		settings: settings,
		logger:   cfg.Logger,
	}, nil
}

// Read returns a snapshot the caller may keep and modify freely.
func (w *Workspace) Read(ctx context.Context) (*laundry.Dataset, error) {
	ds, found, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return w.empty(), nil
	}
	return ds.Clone(), nil
}

// Update loads the dataset, applies fn to a private copy and saves it when fn succeeds.
// The saved snapshot is returned. A failing fn leaves the stored dataset untouched.
func (w *Workspace) Update(ctx context.Context, fn func(*laundry.Dataset) error) (*laundry.Dataset, error) {
	var saved *laundry.Dataset
	err := w.serialise(ctx, func(ctx context.Context) error {
		current, found, err := w.store.Load(ctx)
		if err != nil {
			return err
		}
		if !found {
			current = w.empty()
		}
		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		if err := w.store.Save(ctx, next); err != nil {
			return err
		}
		saved = next.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Replace overwrites the whole dataset.
func (w *Workspace) Replace(ctx context.Context, ds *laundry.Dataset) error {
	return w.serialise(ctx, func(ctx context.Context) error {
		return w.store.Save(ctx, ds.Clone())
	})
}

// Init seeds the store when it holds no snapshot. It reports whether seeding happened.
func (w *Workspace) Init(ctx context.Context, seed func() *laundry.Dataset) (bool, error) {
	seeded := false
	err := w.serialise(ctx, func(ctx context.Context) error {
		_, found, err := w.store.Load(ctx)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		ds := w.empty()
		if seed != nil {
			ds = seed()
			ds.Settings = w.settings
			if err := ds.RetotalAll(); err != nil {
				return fmt.Errorf("store: price seed data: %w", err)
			}
		}
		if err := w.store.Save(ctx, ds); err != nil {
			return fmt.Errorf("store: seed workspace: %w", err)
		}
		seeded = true
		return nil
	})
	if seeded {
		w.logger.Info().Msg("workspace_seeded")
	}
	return seeded, err
}

// Ping checks the underlying store.
func (w *Workspace) Ping(ctx context.Context) error {
	return w.store.Ping(ctx)
}

func (w *Workspace) serialise(ctx context.Context, fn func(context.Context) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.locker == nil {
		return fn(ctx)
	}
	return w.locker.WithLock(ctx, w.lockKey, fn)
}

func (w *Workspace) empty() *laundry.Dataset {
	return &laundry.Dataset{
		Orders:    []laundry.Order{},
		Customers: []laundry.Customer{},
		Invoices:  []laundry.Invoice{},
		Inventory: []laundry.InventoryItem{},
		Settings:  w.settings,
	}
}
