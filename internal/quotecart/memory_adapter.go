package quotecart

import (
	"context"
	"sync"
)

// MemoryAdapter keeps the snapshot in process memory. It backs tests and the
// degraded mode where neither redis nor a writable disk is available.
type MemoryAdapter struct {
	mu       sync.Mutex
	raw      []byte
	hasValue bool
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{}
}

func (a *MemoryAdapter) Load(_ context.Context) ([]QuoteItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasValue {
		return nil, ErrSnapshotNotFound
	}
	return decodeSnapshot(a.raw)
}

func (a *MemoryAdapter) Save(_ context.Context, items []QuoteItem) error {
	payload, err := encodeSnapshot(items)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.raw = payload
	a.hasValue = true
	return nil
}
