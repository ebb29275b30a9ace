package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm stores one row per record, so updates never rewrite the whole
// collection. Update is a compare-and-swap on the version column inside a
// transaction: two writers racing on the same row can't both win.
type Gorm[T Record[T]] struct {
	db   *gorm.DB
	name string
}

type tabler interface {
	TableName() string
}

func NewGorm[T Record[T]](db *gorm.DB) *Gorm[T] {
	var zero T
	name := "records"
	if t, ok := any(zero).(tabler); ok {
		name = t.TableName()
	}
	return &Gorm[T]{db: db, name: name}
}

func (g *Gorm[T]) Name() string { return g.name }

func (g *Gorm[T]) List(ctx context.Context) ([]T, error) {
	var recs []T
	if err := g.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, Unavailable(g.name, "list", err)
	}
	return recs, nil
}

func (g *Gorm[T]) Get(ctx context.Context, id string) (T, error) {
	return g.take(g.db.WithContext(ctx), id)
}

func (g *Gorm[T]) take(tx *gorm.DB, id string) (T, error) {
	var rec T
	err := tx.Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, Unavailable(g.name, "get", err)
	}
	return rec, nil
}

func (g *Gorm[T]) Query(ctx context.Context, match func(T) bool) ([]T, error) {
	recs, err := g.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter(recs, match), nil
}

// QueryColumn lets the database narrow the rows by column before match runs
func (g *Gorm[T]) QueryColumn(ctx context.Context, column string, value any, match func(T) bool) ([]T, error) {
	var recs []T
	err := g.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Find(&recs).Error
	if err != nil {
		return nil, Unavailable(g.name, "query", err)
	}
	return filter(recs, match), nil
}

func filter[T any](recs []T, match func(T) bool) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (g *Gorm[T]) Put(ctx context.Context, rec T) (T, error) {
	var out T
	err := g.transaction(ctx, "put", func(tx *gorm.DB) error {
		cur, err := g.take(tx, rec.RecordID())
		if errors.Is(err, ErrNotFound) {
			out = rec.WithVersion(1)
			if err := tx.Create(&out).Error; err != nil {
				return Unavailable(g.name, "put", err)
			}
			return nil
		}
		if err != nil {
			return err
		}

		out = rec.WithVersion(cur.RecordVersion() + 1)
		if err := tx.Model(&out).Select("*").Updates(&out).Error; err != nil {
			return Unavailable(g.name, "put", err)
		}
		return nil
	})
	return out, err
}

func (g *Gorm[T]) Create(ctx context.Context, rec T) (T, error) {
	out := rec.WithVersion(1)
	err := g.transaction(ctx, "create", func(tx *gorm.DB) error {
		var existing []T
		res := tx.Where("id = ?", rec.RecordID()).Limit(1).Find(&existing)
		if res.Error != nil {
			return Unavailable(g.name, "create", res.Error)
		}
		if res.RowsAffected > 0 {
			return ErrDuplicate
		}

		if err := tx.Create(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicate
			}
			return Unavailable(g.name, "create", err)
		}
		return nil
	})
	return out, err
}

func (g *Gorm[T]) Remove(ctx context.Context, id string) error {
	if err := g.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error; err != nil {
		return Unavailable(g.name, "remove", err)
	}
	return nil
}

func (g *Gorm[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	return RetryOnConflict(ctx, func() (T, error) {
		var out T
		err := g.transaction(ctx, "update", func(tx *gorm.DB) error {
			cur, err := g.take(tx, id)
			if err != nil {
				return err
			}
			next, err := fn(cur)
			if err != nil {
				return err
			}

			next = next.WithVersion(cur.RecordVersion() + 1)
			res := tx.Model(&next).
				Where("version = ?", cur.RecordVersion()).
				Select("*").
				Updates(&next)
			if res.Error != nil {
				return Unavailable(g.name, "update", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrConflict
			}
			out = next
			return nil
		})
		return out, err
	})
}

// transaction runs body in a transaction. Errors coming out of body are
// returned as they are, failures to begin or commit become ErrStoreUnavailable.
func (g *Gorm[T]) transaction(ctx context.Context, op string, body func(tx *gorm.DB) error) error {
	var inner error
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner = body(tx)
		return inner
	})
	if err != nil && inner == nil {
		return Unavailable(g.name, op, err)
	}
	return err
}
