package shared

import (
	"context"
	"time"
)

// KeyedLocker grants short-lived exclusive leases on string keys.
// Implementations must be safe across processes when backed by a shared store.
type KeyedLocker interface {
	// TryLock acquires the lease for key. It returns a release func and true on success,
	// or false when another holder owns the lease.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
	Close() error
}
