package selector

import "sync"

// Source is a versioned state the memo can watch. store.Store satisfies it.
type Source[T any] interface {
	Items() []T
	Version() uint64
}

// Memo caches a selector's result until the source's version changes.
type Memo[T, R any] struct {
	src Source[T]
	fn  func([]T) R

	mu      sync.Mutex
	valid   bool
	version uint64
	value   R
}

// NewMemo memoizes fn over src.
func NewMemo[T, R any](src Source[T], fn func([]T) R) *Memo[T, R] {
	return &Memo[T, R]{src: src, fn: fn}
}

// Get returns the cached value, recomputing only when the source changed.
func (m *Memo[T, R]) Get() R {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.src.Version()
	if m.valid && v == m.version {
		return m.value
	}
	// The version is read before the items, so a commit landing in between
	// costs a spurious recompute, never a stale hit.
	items := m.src.Items()
	m.value = m.fn(items)
	m.version = v
	m.valid = true
	return m.value
}
