package query

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchRecorder struct {
	mu    sync.Mutex
	calls [][]string
	data  map[string]string
	err   error
}

func (f *fetchRecorder) fetch(_ context.Context, keys []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	f.calls = append(f.calls, sorted)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := f.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func TestResolver_BatchesAndToleratesMissing(t *testing.T) {
	rec := &fetchRecorder{data: map[string]string{"b1": "Bakery", "b2": "Barber"}}
	r := NewResolver[string, string](rec.fetch)

	got, err := r.Resolve(context.Background(), []string{"b1", "b2", "gone", "b1"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"b1": "Bakery", "b2": "Barber"}, got)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{"b1", "b2", "gone"}, rec.calls[0])
}

func TestResolver_StoreFailure(t *testing.T) {
	rec := &fetchRecorder{err: errors.New("connection reset")}
	r := NewResolver[string, string](rec.fetch)

	_, err := r.Resolve(context.Background(), []string{"b1"})
	assert.EqualError(t, err, "connection reset")
}

func TestResolver_EmptyKeys(t *testing.T) {
	rec := &fetchRecorder{}
	r := NewResolver[string, string](rec.fetch)

	got, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, rec.calls)
}
