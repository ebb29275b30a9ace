package redis

import (
	redis_models "PlayFinder/models/redis"
	redis_utils "PlayFinder/services/redis/utils"
	"PlayFinder/services/store"
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Collection keeps a whole collection as one JSON blob under one key, the
// way the browser-storage clients did. Every write is a read-modify-write of
// the blob guarded by WATCH, so a concurrent writer makes the transaction
// fail and the write is retried on the fresh blob instead of overwriting it.
type Collection[T store.Record[T]] struct {
	rc   *RedisClient
	name string
	key  string
}

func NewCollection[T store.Record[T]](rc *RedisClient, name string) *Collection[T] {
	return &Collection[T]{rc: rc, name: name, key: redis_utils.FormatCollectionKey(name)}
}

func (c *Collection[T]) Name() string { return c.name }

// getter is satisfied by both the client and a WATCH transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *Collection[T]) load(ctx context.Context, r getter) ([]T, error) {
	raw, err := r.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Unavailable(c.name, "read", err)
	}

	records := raw
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		var blob redis_models.Blob
		if err := json.Unmarshal(raw, &blob); err != nil {
			return nil, store.Unavailable(c.name, "decode", err)
		}
		records = blob.Records
	}

	var recs []T
	if len(records) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(records, &recs); err != nil {
		return nil, store.Unavailable(c.name, "decode", err)
	}
	return recs, nil
}

func (c *Collection[T]) encode(recs []T) ([]byte, error) {
	if recs == nil {
		recs = []T{}
	}
	records, err := json.Marshal(recs)
	if err != nil {
		return nil, store.Unavailable(c.name, "encode", err)
	}
	raw, err := json.Marshal(redis_models.Blob{Schema: redis_models.BlobSchema, Records: records})
	if err != nil {
		return nil, store.Unavailable(c.name, "encode", err)
	}
	return raw, nil
}

// mutate runs fn on the current blob and writes its result atomically
func (c *Collection[T]) mutate(ctx context.Context, op string, fn func([]T) ([]T, error)) error {
	_, err := store.RetryOnConflict(ctx, func() (struct{}, error) {
		var inner error
		err := c.rc.Client.Watch(ctx, func(tx *redis.Tx) error {
			inner = c.apply(ctx, tx, fn)
			return inner
		}, c.key)

		switch {
		case errors.Is(err, redis.TxFailedErr):
			return struct{}{}, store.ErrConflict
		case err != nil && inner == nil:
			return struct{}{}, store.Unavailable(c.name, op, err)
		}
		return struct{}{}, err
	})
	return err
}

func (c *Collection[T]) apply(ctx context.Context, tx *redis.Tx, fn func([]T) ([]T, error)) error {
	recs, err := c.load(ctx, tx)
	if err != nil {
		return err
	}
	next, err := fn(recs)
	if err != nil {
		return err
	}
	raw, err := c.encode(next)
	if err != nil {
		return err
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key, raw, 0)
		return nil
	})
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		return store.Unavailable(c.name, "write", err)
	}
	return err
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	recs, err := c.load(ctx, c.rc.Client)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	recs, err := c.load(ctx, c.rc.Client)
	if err != nil {
		return zero, err
	}
	if i := indexOf(recs, id); i >= 0 {
		return recs[i], nil
	}
	return zero, store.ErrNotFound
}

func (c *Collection[T]) Query(ctx context.Context, match func(T) bool) ([]T, error) {
	recs, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (c *Collection[T]) Put(ctx context.Context, rec T) (T, error) {
	var out T
	err := c.mutate(ctx, "put", func(recs []T) ([]T, error) {
		if i := indexOf(recs, rec.RecordID()); i >= 0 {
			out = rec.WithVersion(recs[i].RecordVersion() + 1)
			recs[i] = out
			return recs, nil
		}
		out = rec.WithVersion(1)
		return append(recs, out), nil
	})
	return out, err
}

func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	out := rec.WithVersion(1)
	err := c.mutate(ctx, "create", func(recs []T) ([]T, error) {
		if indexOf(recs, rec.RecordID()) >= 0 {
			return nil, store.ErrDuplicate
		}
		return append(recs, out), nil
	})
	return out, err
}

func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	return c.mutate(ctx, "remove", func(recs []T) ([]T, error) {
		out := recs[:0]
		for _, rec := range recs {
			if rec.RecordID() != id {
				out = append(out, rec)
			}
		}
		return out, nil
	})
}

func (c *Collection[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	var out T
	err := c.mutate(ctx, "update", func(recs []T) ([]T, error) {
		i := indexOf(recs, id)
		if i < 0 {
			return nil, store.ErrNotFound
		}
		next, err := fn(recs[i])
		if err != nil {
			return nil, err
		}
		out = next.WithVersion(recs[i].RecordVersion() + 1)
		recs[i] = out
		return recs, nil
	})
	return out, err
}

func indexOf[T store.Record[T]](recs []T, id string) int {
	for i, rec := range recs {
		if rec.RecordID() == id {
			return i
		}
	}
	return -1
}
