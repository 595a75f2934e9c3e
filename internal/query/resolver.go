package query

import (
	"context"
	"errors"

	"github.com/graph-gophers/dataloader/v7"
)

// ErrMissing marks a reference whose target no longer exists.
var ErrMissing = errors.New("relation target missing")

// FetchFunc loads the targets present among keys. Absent keys are simply
// left out of the returned map.
type FetchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Resolver expands references through a batched loader. Loads issued
// within one batch window are served by a single FetchFunc call.
type Resolver[K comparable, V any] struct {
	loader *dataloader.Loader[K, V]
}

// NewResolver wraps fetch in a batched loader.
func NewResolver[K comparable, V any](fetch FetchFunc[K, V], opts ...dataloader.Option[K, V]) *Resolver[K, V] {
	batch := func(ctx context.Context, keys []K) []*dataloader.Result[V] {
		results := make([]*dataloader.Result[V], len(keys))
		found, err := fetch(ctx, keys)
		for i, key := range keys {
			switch v, ok := found[key]; {
			case err != nil:
				results[i] = &dataloader.Result[V]{Error: err}
			case ok:
				results[i] = &dataloader.Result[V]{Data: v}
			default:
				results[i] = &dataloader.Result[V]{Error: ErrMissing}
			}
		}
		return results
	}
	return &Resolver[K, V]{loader: dataloader.NewBatchedLoader(batch, opts...)}
}

// Resolve loads every key. Missing targets are absent from the result;
// any other failure aborts the resolution.
func (r *Resolver[K, V]) Resolve(ctx context.Context, keys []K) (map[K]V, error) {
	thunks := make(map[K]dataloader.Thunk[V], len(keys))
	for _, key := range keys {
		if _, ok := thunks[key]; !ok {
			thunks[key] = r.loader.Load(ctx, key)
		}
	}

	out := make(map[K]V, len(thunks))
	for key, thunk := range thunks {
		v, err := thunk()
		if errors.Is(err, ErrMissing) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// Clear drops a cached key, used after the target is mutated.
func (r *Resolver[K, V]) Clear(ctx context.Context, key K) {
	r.loader.Clear(ctx, key)
}
