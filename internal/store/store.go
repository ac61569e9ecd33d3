// Package store holds the in-memory reactive stores for cart, wishlist and
// favorites. Every committed mutation is persisted best-effort and then
// announced to subscribers.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/EcommerceGo/clientstate/internal/persistence"
	apperrors "github.com/utafrali/EcommerceGo/clientstate/pkg/errors"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/logger"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_state_mutations_total",
			Help: "Total number of committed store mutations",
		},
		[]string{"domain", "op"},
	)

	persistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_state_persist_failures_total",
			Help: "Total number of swallowed persistence failures",
		},
		[]string{"domain"},
	)
)

// ErrClosed is wrapped by mutations on a store that has been closed.
var ErrClosed = errors.New("store closed")

// Entry is anything a store can hold: entries are unique by EntryKey.
type Entry interface {
	EntryKey() string
}

// Snapshot is the committed state handed to subscribers.
type Snapshot[T Entry] struct {
	Items   []T
	Version uint64
	Op      string
}

// Listener receives every committed snapshot. Listeners run synchronously on
// the mutating goroutine and must not call the store's mutators.
type Listener[T Entry] func(Snapshot[T])

// Options configures a Store.
type Options struct {
	Provider persistence.Provider
	Key      string
	Logger   *slog.Logger
	Now      func() time.Time
}

// Store is an ordered collection of entries unique by key, kept in sync with a
// persistence slot.
type Store[T Entry] struct {
	key      string
	provider persistence.Provider
	logger   *slog.Logger
	now      func() time.Time

	// writeMu serializes mutate-persist-notify sequences and guards closed;
	// mu guards the state.
	writeMu sync.Mutex
	closed  bool
	mu      sync.RWMutex
	items   []T
	version uint64

	subMu     sync.Mutex
	listeners map[int]Listener[T]
	nextSub   int
}

// New creates an empty store. Call Hydrate to load previously saved state.
func New[T Entry](opts Options) *Store[T] {
	if opts.Provider == nil {
		opts.Provider = persistence.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store[T]{
		key:       opts.Key,
		provider:  opts.Provider,
		logger:    opts.Logger.With(slog.String("store", persistence.DomainOf(opts.Key))),
		now:       opts.Now,
		items:     []T{},
		listeners: make(map[int]Listener[T]),
	}
}

// Key returns the storage key this store persists under.
func (s *Store[T]) Key() string { return s.key }

// Hydrate replaces the in-memory state with the saved blob, if any. A missing
// blob leaves the store empty. Incompatible blobs are logged and discarded.
// Any other load failure is returned and the store is left untouched, so
// callers must not let it write over state it never read.
func (s *Store[T]) Hydrate(ctx context.Context) error {
	blob, err := s.provider.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to load saved state",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("load %s: %w", s.key, err)
	}

	items, version, err := persistence.Decode[T](blob)
	if err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "discarding incompatible saved state",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.items = items
	s.version++
	snap := s.snapshotLocked("hydrate")
	s.mu.Unlock()

	if version < persistence.SchemaVersion {
		// Rewrite legacy blobs at the current schema right away.
		s.persist(ctx, snap.Items)
	}
	s.notify(snap)
	return nil
}

// Close stops the store from accepting mutations. It waits for an in-flight
// mutation to finish persisting. Reads keep working on the last state.
func (s *Store[T]) Close() {
	s.writeMu.Lock()
	s.closed = true
	s.writeMu.Unlock()
}

// Items returns a copy of the committed entries in order.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

// Version increases by one on every committed change.
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of entries.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns the entry for key.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.items, key); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Subscribe registers l and returns a function that removes it.
func (s *Store[T]) Subscribe(l Listener[T]) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.listeners, id)
		s.subMu.Unlock()
	}
}

// Mutate applies fn to a copy of the current entries. When fn reports a
// change, the result is committed, persisted and announced; otherwise nothing
// happens. Duplicate keys in the result are rejected without committing.
func (s *Store[T]) Mutate(ctx context.Context, op string, fn func(items []T) ([]T, bool)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return apperrors.Unavailable("state was reloaded by a newer request, retry", ErrClosed)
	}
	next, changed := fn(s.Items())
	if !changed {
		return nil
	}
	if dup, ok := firstDuplicate(next); ok {
		return apperrors.Conflict("duplicate entry for product " + dup)
	}
	if next == nil {
		next = []T{}
	}

	s.mu.Lock()
	s.items = next
	s.version++
	snap := s.snapshotLocked(op)
	s.mu.Unlock()

	mutationsTotal.WithLabelValues(persistence.DomainOf(s.key), op).Inc()
	s.persist(ctx, snap.Items)
	s.notify(snap)
	return nil
}

func (s *Store[T]) snapshotLocked(op string) Snapshot[T] {
	return Snapshot[T]{
		Items:   append([]T(nil), s.items...),
		Version: s.version,
		Op:      op,
	}
}

// persist writes items under the store key. Failures are logged and counted,
// never returned: the in-memory state stays authoritative.
func (s *Store[T]) persist(ctx context.Context, items []T) {
	blob, err := persistence.Encode(items, s.now())
	if err == nil {
		err = s.provider.Save(ctx, s.key, blob)
	}
	if err != nil {
		persistFailuresTotal.WithLabelValues(persistence.DomainOf(s.key)).Inc()
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to persist state",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Store[T]) notify(snap Snapshot[T]) {
	s.subMu.Lock()
	listeners := make([]Listener[T], 0, len(s.listeners))
	for id := 0; id < s.nextSub; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.subMu.Unlock()

	for _, l := range listeners {
		l(Snapshot[T]{Items: append([]T(nil), snap.Items...), Version: snap.Version, Op: snap.Op})
	}
}

func indexOf[T Entry](items []T, key string) int {
	for i := range items {
		if items[i].EntryKey() == key {
			return i
		}
	}
	return -1
}

func firstDuplicate[T Entry](items []T) (string, bool) {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := it.EntryKey()
		if _, ok := seen[k]; ok {
			return k, true
		}
		seen[k] = struct{}{}
	}
	return "", false
}
