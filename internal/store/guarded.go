package store

import (
	"context"
	"errors"

	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/resilience"
)

// ErrUnavailable is returned when the backing store is refused by its breaker.
var ErrUnavailable = errors.New("store: backend unavailable")

// Guarded fails fast once the wrapped store keeps erroring.
type Guarded struct {
	Store   Store
	Breaker *resilience.Breaker
}

func (g Guarded) Load(ctx context.Context) (*laundry.Dataset, bool, error) {
	var (
		ds    *laundry.Dataset
		found bool
	)
	err := g.do(ctx, func(ctx context.Context) error {
		var err error
		ds, found, err = g.Store.Load(ctx)
		return err
	})
	return ds, found, err
}

func (g Guarded) Save(ctx context.Context, ds *laundry.Dataset) error {
	return g.do(ctx, func(ctx context.Context) error { return g.Store.Save(ctx, ds) })
}

func (g Guarded) Ping(ctx context.Context) error {
	return g.do(ctx, g.Store.Ping)
}

func (g Guarded) do(ctx context.Context, fn func(context.Context) error) error {
	if g.Breaker == nil {
		return fn(ctx)
	}
	err := g.Breaker.Do(ctx, fn, callerGaveUp)
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return ErrUnavailable
	}
	return err
}

func callerGaveUp(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
