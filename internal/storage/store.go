package storage

import "context"

// Storage keys. One independent JSON-encoded entry per key; absence of the
// config entry means tournament setup has not been completed.
const (
	KeyConfig      = "config"
	KeyTeams       = "teams"
	KeyPlayers     = "players"
	KeySoldPlayers = "sold_players"
	KeyActiveTab   = "active_tab"
)

// Store is the persisted-state contract. Read/write failures are expected
// to be recoverable: callers fall back to in-memory defaults and keep
// operating for the session.
type Store interface {
	// Get decodes the entry for key into v. It reports false with a nil
	// error when the key has never been written.
	Get(ctx context.Context, key string, v interface{}) (bool, error)
	Put(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, key string) error
}
