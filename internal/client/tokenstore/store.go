// Package tokenstore persists the bearer token across client restarts.
// It is the durable single-slot store the session service rehydrates from:
// exactly one token value survives a restart, held under a fixed key.
package tokenstore

import "context"

// Key under which the bearer token is stored.
const tokenKey = "auth_token"

// Store is the durable token slot.
//
// Load returns an empty string (not an error) when no token is stored.
type Store interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
	Close() error
}
