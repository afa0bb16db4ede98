package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// Record is the serialize/deserialize adapter between a state container and
// its namespace. The container calls Save after every committed mutation and
// Load once at construction.
type Record[T any] struct {
	store     Store
	namespace string
}

// NewRecord binds a typed snapshot to a namespace.
func NewRecord[T any](store Store, namespace string) *Record[T] {
	return &Record[T]{store: store, namespace: namespace}
}

// Namespace returns the storage key of the record.
func (r *Record[T]) Namespace() string {
	return r.namespace
}

// Load decodes the stored snapshot. found is false when nothing was stored;
// that is not an error.
func (r *Record[T]) Load(ctx context.Context) (value T, found bool, err error) {
	data, err := r.store.Load(ctx, r.namespace)
	if errors.Is(err, ErrNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}

	if err := sonic.ConfigStd.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("failed to decode %s: %w", r.namespace, err)
	}
	return value, true, nil
}

// Save encodes and writes the snapshot.
func (r *Record[T]) Save(ctx context.Context, value T) error {
	data, err := sonic.ConfigStd.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", r.namespace, err)
	}
	return r.store.Save(ctx, r.namespace, data)
}

// Clear removes the snapshot.
func (r *Record[T]) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, r.namespace)
}
