package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
)

type lease struct {
	token     uint64
	expiresAt time.Time
}

// InMemoryLocker implements KeyedLocker within one process.
// It is suitable for single-instance deployments and tests only.
type InMemoryLocker struct {
	mu     sync.Mutex
	leases map[string]lease
	next   uint64
	now    func() time.Time
}

// NewInMemoryLocker creates a new in-memory locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{
		leases: make(map[string]lease),
		now:    time.Now,
	}
}

// TryLock grants the lease when the key is free or its previous lease has expired
func (l *InMemoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if current, held := l.leases[key]; held && now.Before(current.expiresAt) {
		return nil, false, nil
	}
	l.next++
	token := l.next
	l.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if current, held := l.leases[key]; held && current.token == token {
				delete(l.leases, key)
			}
		})
	}
	return release, true, nil
}

// Size returns the number of live or expired leases still tracked
func (l *InMemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.leases)
}

func (l *InMemoryLocker) Close() error {
	return nil
}

var _ shared.KeyedLocker = (*InMemoryLocker)(nil)
