package store

import (
	"context"
	"sync"

	"github.com/custadmin/custadmin/internal/model"
)

// MemoryStore keeps the list in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{snap: emptySnapshot()}
}

// Get returns a copy of the current snapshot.
func (m *MemoryStore) Get(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySnapshot(m.snap), nil
}

// Update runs fn under the store lock.
func (m *MemoryStore) Update(ctx context.Context, fn ReconcileFunc) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(model.CloneCustomers(m.snap.Customers))
	if err != nil {
		return Snapshot{}, err
	}

	m.snap = nextSnapshot(model.CloneCustomers(next))
	return copySnapshot(m.snap), nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func copySnapshot(s Snapshot) Snapshot {
	s.Customers = model.CloneCustomers(s.Customers)
	return s
}
