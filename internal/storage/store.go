package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// Keys persisted per shopper session.
const (
	KeyCart           = "cart"
	KeyCartRestaurant = "cartRestaurant"
	KeyAccessToken    = "accessToken"
	KeyRefreshToken   = "refreshToken"
	KeyUser           = "user"
	KeyCheckout       = "checkout"
)

// Store is a durable key/value store scoped by shopper session.
type Store interface {
	// Get returns the raw JSON stored under key, or ErrNotFound.
	Get(ctx context.Context, sessionID, key string) (json.RawMessage, error)
	// Put writes all values at once. Either every key is written or none is.
	Put(ctx context.Context, sessionID string, values map[string]json.RawMessage) error
	// Delete removes keys; missing keys are ignored.
	Delete(ctx context.Context, sessionID string, keys ...string) error
}

// GetJSON decodes the value under key into out.
func GetJSON(ctx context.Context, s Store, sessionID, key string, out any) error {
	raw, err := s.Get(ctx, sessionID, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Encode marshals each value so it can be handed to Put.
func Encode(values map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[k] = raw
	}
	return out, nil
}
