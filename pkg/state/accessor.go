package state

import "context"

// Accessor is the keyed-state boundary backing all durable per-user and
// per-conversation records. Values are JSON-encoded by implementations.
type Accessor interface {
	// Get decodes the value stored under key into out. The bool reports
	// whether the key existed.
	Get(ctx context.Context, key string, out interface{}) (bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value interface{}) error

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error
}
