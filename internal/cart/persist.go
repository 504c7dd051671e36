package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/model"
)

// StorageKey is the fixed key the cart is stored under.
const StorageKey = "fitfuel.cart"

// ErrNotFound is returned by a Store when the key has no value.
var ErrNotFound = errors.New("storage key not found")

// Store is durable key/value storage for client state.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// PersistenceCorruptionError describes stored cart data that is not a JSON
// array of items.
type PersistenceCorruptionError struct {
	Key string
	Err error
}

func (e *PersistenceCorruptionError) Error() string {
	return fmt.Sprintf("corrupt cart data under %q: %v", e.Key, e.Err)
}

func (e *PersistenceCorruptionError) Unwrap() error { return e.Err }

// Decode parses stored cart data. Lines with quantity below one are dropped.
func Decode(key string, raw []byte) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &PersistenceCorruptionError{Key: key, Err: err}
	}
	if items == nil {
		return nil, &PersistenceCorruptionError{Key: key, Err: errors.New("value is not an array")}
	}
	out := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 || it.ID == "" {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// Load reads the cart stored under key. Missing or corrupt data yields an
// empty cart; only storage failures are returned.
func Load(ctx context.Context, s Store, key string) ([]model.CartItem, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return Clear(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %q: %w", key, err)
	}
	items, err := Decode(key, raw)
	if err != nil {
		logger.Warn("discarding corrupt cart", "key", key, "error", err)
		return Clear(), nil
	}
	return items, nil
}

func Save(ctx context.Context, s Store, key string, c []model.CartItem) error {
	if c == nil {
		c = Clear()
	}
	for _, it := range c {
		if it.Quantity < 1 {
			return fmt.Errorf("refusing to persist cart line %q with quantity %d", it.ID, it.Quantity)
		}
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save cart %q: %w", key, err)
	}
	return nil
}
