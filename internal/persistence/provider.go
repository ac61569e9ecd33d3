// Package persistence holds the durable key/blob slots the client stores write
// their serialized state to.
package persistence

import (
	"context"
	"strings"
)

// Stable storage keys, one per domain. Changing them orphans saved state.
const (
	KeyCart      = "cart-storage"
	KeyWishlist  = "wishlist-storage"
	KeyFavorites = "favorites-storage"
)

// Provider is a durable storage slot addressable by key.
//
// Load returns an error wrapping apperrors.ErrNotFound when nothing has been
// saved under key. Save overwrites the slot.
type Provider interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
}

// ScopedKey returns the storage key for a domain slot owned by one session.
func ScopedKey(domainKey, sessionID string) string {
	if sessionID == "" {
		return domainKey
	}
	return domainKey + ":" + sessionID
}

// DomainOf returns the domain part of a storage key, for metric labels.
func DomainOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
