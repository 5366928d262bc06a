package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	appinv "github.com/erp/procurement/internal/application/inventory"
)

var _ appinv.ReportExporter = (*MemoryReportStore)(nil)

// MemoryReportStore keeps reports in process memory.
// It is used when no bucket is configured and in tests.
type MemoryReportStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryReportStore creates an empty store
func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{objects: make(map[string][]byte)}
}

func (m *MemoryReportStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryReportStore) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return append([]byte(nil), data...), nil
}

// Keys lists stored keys in lexical order
func (m *MemoryReportStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
