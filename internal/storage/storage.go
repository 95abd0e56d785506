// Package storage is the durable key-value store behind the session:
// a handful of string keys that survive restarts, plus a subscription
// for the "state was cleared" signal. The file-backed implementation
// also observes clears performed by another process on the same state
// file, which is what resets the session when a sibling instance logs
// out.
package storage

// Keys used by the session store.
const (
	KeyAccessToken = "access_token"
	KeyProfile     = "profile"
)

type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error

	// Clear removes every key and notifies subscribers.
	Clear() error

	// Subscribe registers fn to run after the store is cleared, locally
	// or externally. The returned function unsubscribes.
	Subscribe(fn func()) (unsubscribe func())

	Close() error
}
