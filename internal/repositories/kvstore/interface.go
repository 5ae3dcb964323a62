package kvstore

import "context"

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// UpdateFunc receives the current value (found is false when the key is
// absent) and returns the value to store.
type UpdateFunc func(current string, found bool) (string, error)

// Updater is implemented by backends that can apply an UpdateFunc
// atomically with respect to other writers of the same key.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
