// Package session keeps one set of client state stores per session id.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/utafrali/EcommerceGo/clientstate/internal/command"
	"github.com/utafrali/EcommerceGo/clientstate/internal/event"
	"github.com/utafrali/EcommerceGo/clientstate/internal/history"
	"github.com/utafrali/EcommerceGo/clientstate/internal/persistence"
	"github.com/utafrali/EcommerceGo/clientstate/internal/store"
	apperrors "github.com/utafrali/EcommerceGo/clientstate/pkg/errors"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/logger"
)

// MaxIDLength bounds session ids, which end up inside storage keys.
const MaxIDLength = 128

// lockStripes is the number of build locks session ids hash onto.
const lockStripes = 64

// Session is the store set owned by one client session.
type Session struct {
	ID        string
	Cart      *command.CartCommands
	Wishlist  *store.Wishlist
	Favorites *store.Favorites

	unsubscribe func()
	closeOnce   sync.Once
}

// close detaches the session from its storage keys. Commands still running
// finish first; later writes fail with store.ErrClosed.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.Cart.Close()
		s.Wishlist.Close()
		s.Favorites.Close()
	})
}

// Options configures a Registry.
type Options struct {
	Provider     persistence.Provider
	Logger       *slog.Logger
	Size         int
	HistoryLimit int
	// Notifier, when set, publishes every cart change of every session.
	Notifier *event.CartNotifier
}

// Registry lazily builds and hydrates sessions and keeps the most recently
// used ones in memory. An evicted session is rebuilt from persistence on its
// next access.
type Registry struct {
	provider     persistence.Provider
	logger       *slog.Logger
	historyLimit int
	notifier     *event.CartNotifier

	cache *lru.Cache[string, *Session]
	// live holds the one session allowed to write each id's storage keys,
	// including sessions already evicted from cache but not yet closed.
	live  sync.Map
	locks [lockStripes]sync.Mutex
}

// NewRegistry creates a registry holding at most opts.Size sessions.
func NewRegistry(opts Options) (*Registry, error) {
	if opts.Provider == nil {
		opts.Provider = persistence.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	r := &Registry{
		provider:     opts.Provider,
		logger:       opts.Logger,
		historyLimit: opts.HistoryLimit,
		notifier:     opts.Notifier,
	}
	cache, err := lru.NewWithEvict[string, *Session](opts.Size, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Get returns the session for id, building and hydrating it on first use.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if len(id) > MaxIDLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("session id must be at most %d characters", MaxIDLength))
	}

	if s, ok := r.cache.Get(id); ok {
		return s, nil
	}

	unlock := r.lock(id)
	defer unlock()

	if s, ok := r.cache.Get(id); ok {
		return s, nil
	}
	// A previous owner may still be held by a request that started before
	// eviction. Close it before anything reads the keys again.
	if old, ok := r.live.Load(id); ok {
		old.(*Session).close()
	}

	s, err := r.build(ctx, id)
	if err != nil {
		return nil, apperrors.Unavailable("session state is temporarily unavailable", err)
	}
	r.live.Store(id, s)
	r.cache.Add(id, s)
	return s, nil
}

// Remove drops the session from memory. Its persisted state is kept.
func (r *Registry) Remove(id string) bool {
	return r.cache.Remove(id)
}

// Len returns the number of sessions in memory.
func (r *Registry) Len() int {
	return r.cache.Len()
}

func (r *Registry) build(ctx context.Context, id string) (*Session, error) {
	l := r.logger.With(slog.String("session_id", id))

	cart := store.NewCart(store.Options{
		Provider: r.provider,
		Key:      persistence.ScopedKey(persistence.KeyCart, id),
		Logger:   l,
	})
	wishlist := store.NewWishlist(store.Options{
		Provider: r.provider,
		Key:      persistence.ScopedKey(persistence.KeyWishlist, id),
		Logger:   l,
	})
	favorites := store.NewFavorites(store.Options{
		Provider: r.provider,
		Key:      persistence.ScopedKey(persistence.KeyFavorites, id),
		Logger:   l,
	})

	cmds := command.NewCartCommands(cart, history.New(r.historyLimit), l)
	if err := cmds.Hydrate(ctx); err != nil {
		return nil, err
	}
	if err := wishlist.Hydrate(ctx); err != nil {
		return nil, err
	}
	if err := favorites.Hydrate(ctx); err != nil {
		return nil, err
	}

	s := &Session{ID: id, Cart: cmds, Wishlist: wishlist, Favorites: favorites}
	// Subscribe after hydration so loading saved state is not announced.
	if r.notifier != nil {
		s.unsubscribe = cmds.Subscribe(r.notifier.Listener(id))
	}

	logger.WithContext(ctx, l).DebugContext(ctx, "session loaded",
		slog.Int("cart_items", len(cmds.Items())),
		slog.Int("wishlist_items", wishlist.Len()),
		slog.Int("favorites", favorites.Len()),
	)
	return s, nil
}

func (r *Registry) onEvict(id string, s *Session) {
	s.close()
	r.live.CompareAndDelete(id, s)
	r.logger.Debug("session evicted", slog.String("session_id", id))
}

func (r *Registry) lock(id string) func() {
	m := &r.locks[xxhash.Sum64String(id)%lockStripes]
	m.Lock()
	return m.Unlock
}
