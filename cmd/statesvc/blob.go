package main

import (
	"fmt"
	"time"

	"github.com/utafrali/EcommerceGo/clientstate/internal/domain"
	"github.com/utafrali/EcommerceGo/clientstate/internal/persistence"
)

// blobView is what inspect prints.
type blobView struct {
	Key           string `json:"key"`
	SchemaVersion int    `json:"schema_version"`
	Current       bool   `json:"current"`
	Count         int    `json:"count"`
	Items         any    `json:"items"`
}

func inspectBlob(key string, blob []byte) (blobView, error) {
	view := blobView{Key: key}
	var err error
	switch persistence.DomainOf(key) {
	case persistence.KeyCart:
		view.Items, view.Count, view.SchemaVersion, err = decodeAs[domain.LineItem](blob)
	case persistence.KeyWishlist:
		view.Items, view.Count, view.SchemaVersion, err = decodeAs[domain.WishlistEntry](blob)
	case persistence.KeyFavorites:
		view.Items, view.Count, view.SchemaVersion, err = decodeAs[domain.FavoriteEntry](blob)
	default:
		return view, fmt.Errorf("unknown storage key %q", key)
	}
	if err != nil {
		return view, fmt.Errorf("decode %s: %w", key, err)
	}
	view.Current = view.SchemaVersion == persistence.SchemaVersion
	return view, nil
}

func decodeAs[T any](blob []byte) (any, int, int, error) {
	items, version, err := persistence.Decode[T](blob)
	return items, len(items), version, err
}

// migrateBlob re-encodes blob at the current schema. It returns a nil blob
// when nothing needs rewriting, along with the version the blob was read at.
func migrateBlob(key string, blob []byte, now time.Time) ([]byte, int, error) {
	switch persistence.DomainOf(key) {
	case persistence.KeyCart:
		return reencode[domain.LineItem](key, blob, now)
	case persistence.KeyWishlist:
		return reencode[domain.WishlistEntry](key, blob, now)
	case persistence.KeyFavorites:
		return reencode[domain.FavoriteEntry](key, blob, now)
	default:
		return nil, 0, fmt.Errorf("unknown storage key %q", key)
	}
}

func reencode[T any](key string, blob []byte, now time.Time) ([]byte, int, error) {
	items, version, err := persistence.Decode[T](blob)
	if err != nil {
		return nil, version, fmt.Errorf("decode %s: %w", key, err)
	}
	if version == persistence.SchemaVersion {
		return nil, version, nil
	}
	out, err := persistence.Encode(items, now)
	if err != nil {
		return nil, version, err
	}
	return out, version, nil
}
