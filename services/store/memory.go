package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory keeps a collection in process. Records are kept JSON encoded, like
// the browser storage the first clients used, so callers never share slices
// or maps with the stored copy.
type Memory[T Record[T]] struct {
	name  string
	mu    sync.RWMutex
	order []string
	data  map[string][]byte
}

func NewMemory[T Record[T]](name string) *Memory[T] {
	return &Memory[T]{name: name, data: make(map[string][]byte)}
}

func (m *Memory[T]) Name() string { return m.name }

func (m *Memory[T]) decode(raw []byte) (T, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, Unavailable(m.name, "decode", err)
	}
	return rec, nil
}

func (m *Memory[T]) List(ctx context.Context) ([]T, error) {
	return m.Query(ctx, func(T) bool { return true })
}

func (m *Memory[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.data[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return m.decode(raw)
}

func (m *Memory[T]) Query(_ context.Context, match func(T) bool) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0)
	for _, id := range m.order {
		rec, err := m.decode(m.data[id])
		if err != nil {
			return nil, err
		}
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory[T]) Put(_ context.Context, rec T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var version int64
	if raw, ok := m.data[rec.RecordID()]; ok {
		cur, err := m.decode(raw)
		if err != nil {
			return rec, err
		}
		version = cur.RecordVersion()
	}
	return m.write(rec.WithVersion(version + 1))
}

func (m *Memory[T]) Create(_ context.Context, rec T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[rec.RecordID()]; ok {
		return rec, ErrDuplicate
	}
	return m.write(rec.WithVersion(1))
}

func (m *Memory[T]) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[id]; !ok {
		return nil
	}
	delete(m.data, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Update holds the write lock for the whole read-apply-write, so it can't conflict
func (m *Memory[T]) Update(_ context.Context, id string, fn func(T) (T, error)) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.data[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	cur, err := m.decode(raw)
	if err != nil {
		return cur, err
	}
	next, err := fn(cur)
	if err != nil {
		var zero T
		return zero, err
	}
	return m.write(next.WithVersion(cur.RecordVersion() + 1))
}

// write expects the lock to be held
func (m *Memory[T]) write(rec T) (T, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return rec, Unavailable(m.name, "encode", err)
	}
	if _, ok := m.data[rec.RecordID()]; !ok {
		m.order = append(m.order, rec.RecordID())
	}
	m.data[rec.RecordID()] = raw
	return rec, nil
}
