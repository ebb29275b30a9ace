package store

import (
	game_constants "PlayFinder/constants/game"
	"context"
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable wraps every failure of the underlying storage.
	// It reaches the caller untouched, retrying is up to them.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("record already exists")
	// ErrConflict means the record changed between read and write
	ErrConflict = errors.New("record was modified concurrently")
)

// Record is implemented by every persisted model. Version is bumped on each
// write and is what compare-and-swap updates check.
type Record[T any] interface {
	RecordID() string
	RecordVersion() int64
	WithVersion(v int64) T
}

// Collection is the persistence contract the services are written against.
// Every backend (memory, gorm, redis) provides the same semantics.
type Collection[T Record[T]] interface {
	Name() string
	List(ctx context.Context) ([]T, error)
	// Get returns ErrNotFound when there's no record with that id
	Get(ctx context.Context, id string) (T, error)
	// Put inserts or overwrites the record
	Put(ctx context.Context, rec T) (T, error)
	// Create only inserts, failing with ErrDuplicate if the id exists
	Create(ctx context.Context, rec T) (T, error)
	Remove(ctx context.Context, id string) error
	Query(ctx context.Context, match func(T) bool) ([]T, error)
	// Update atomically reads the record, applies fn and writes the result
	// only if nobody else wrote it in between. When fn fails nothing is written.
	Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error)
}

// Indexed is implemented by backends that can narrow a query by a column
type Indexed[T Record[T]] interface {
	QueryColumn(ctx context.Context, column string, value any, match func(T) bool) ([]T, error)
}

// QueryBy returns the records whose column equals value and that match.
// Backends without indexes fall back to Query, so match must check the
// column as well.
func QueryBy[T Record[T]](ctx context.Context, c Collection[T], column string, value any, match func(T) bool) ([]T, error) {
	if ix, ok := c.(Indexed[T]); ok {
		return ix.QueryColumn(ctx, column, value, match)
	}
	return c.Query(ctx, match)
}

// Unavailable tags a backend failure as ErrStoreUnavailable, keeping the cause
func Unavailable(collection, op string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrStoreUnavailable, op, collection, err)
}

// RetryOnConflict runs a compare-and-swap attempt until it stops conflicting
func RetryOnConflict[T any](ctx context.Context, attempt func() (T, error)) (T, error) {
	var zero T
	for i := 0; i < game_constants.MaxUpdateRetries; i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		rec, err := attempt()
		if !errors.Is(err, ErrConflict) {
			return rec, err
		}
	}
	return zero, ErrConflict
}
