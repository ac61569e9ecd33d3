package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// SchemaVersion is the envelope version written by Encode.
const SchemaVersion = 1

// ErrIncompatibleBlob is returned for blobs that cannot be decoded at the
// current schema. Callers discard such blobs instead of failing.
var ErrIncompatibleBlob = errors.New("incompatible state blob")

type envelope[T any] struct {
	SchemaVersion int       `json:"schema_version"`
	SavedAt       time.Time `json:"saved_at"`
	Items         []T       `json:"items"`
}

// Encode serializes items into the current envelope.
func Encode[T any](items []T, savedAt time.Time) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(envelope[T]{
		SchemaVersion: SchemaVersion,
		SavedAt:       savedAt.UTC(),
		Items:         items,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal state envelope: %w", err)
	}
	return data, nil
}

// Decode parses a stored blob and returns its items plus the schema version it
// was written at. Version 0 blobs are the pre-envelope shapes: a bare JSON
// array, or a {"state":{"items":[...]}} wrapper.
func Decode[T any](blob []byte) ([]T, int, error) {
	if !gjson.ValidBytes(blob) {
		return nil, 0, fmt.Errorf("%w: malformed json", ErrIncompatibleBlob)
	}

	root := gjson.ParseBytes(blob)
	var (
		raw     string
		version int
	)
	switch {
	case root.IsArray():
		raw = root.Raw
	case root.Get("schema_version").Exists():
		version = int(root.Get("schema_version").Int())
		if version != SchemaVersion {
			return nil, version, fmt.Errorf("%w: unsupported schema version %d", ErrIncompatibleBlob, version)
		}
		raw = root.Get("items").Raw
	case root.Get("state.items").IsArray():
		raw = root.Get("state.items").Raw
	default:
		return nil, 0, fmt.Errorf("%w: no items", ErrIncompatibleBlob)
	}

	items := []T{}
	if raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, version, fmt.Errorf("%w: %v", ErrIncompatibleBlob, err)
		}
	}
	return items, version, nil
}
