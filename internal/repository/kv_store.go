package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt marks a stored value that was read but does not decode.
var ErrCorrupt = errors.New("corrupt value")

// Durable keys consumed and produced by the client core. All of them live under
// the application namespace, see Namespaced.
const (
	KeyAuthenticated = "authenticated"
	KeyToken         = "token"

	// Legacy store snapshots.
	KeyCart      = "cart"
	KeyFavorites = "favorites"

	// Central store snapshots.
	KeyStoreCart      = "store:cart"
	KeyStoreFavorites = "store:favorites"

	KeyMigrationDone = "migration:legacy:done"
)

// KVStore abstracts the durable, string-keyed store that survives restarts.
// Implementations: in-memory (single process), Redis (shared), Postgres.
type KVStore interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
}

// GetBool reads a "true"/"false" flag. Absent or any other value reads as false.
func GetBool(ctx context.Context, s KVStore, key string) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return string(raw) == "true", nil
}

func SetBool(ctx context.Context, s KVStore, key string, value bool) error {
	if value {
		return s.Set(ctx, key, []byte("true"))
	}
	return s.Set(ctx, key, []byte("false"))
}

// GetJSON decodes the value under key into dst. It reports false when the key
// is absent. A value that does not decode is returned as an error wrapping
// ErrCorrupt; any other error comes from the store itself.
func GetJSON(ctx context.Context, s KVStore, key string, dst any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %q: %w: %w", key, ErrCorrupt, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s KVStore, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
