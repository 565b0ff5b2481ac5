package quotecart

import (
	"context"
	"sync"

	"github.com/dvalenzuela/retrade-backend/pkg/logger"
)

// AdapterFactory builds the persistence adapter for one session's store.
type AdapterFactory func(sessionID string) (Adapter, error)

// Manager hands out one Store per session id. Stores are created lazily on
// first access and hydrated exactly once; concurrent first accesses for the
// same session share a single store and a single hydration attempt.
type Manager struct {
	newAdapter AdapterFactory
	opts       Options
	logg       *logger.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(newAdapter AdapterFactory, opts Options, logg *logger.Logger) *Manager {
	return &Manager{
		newAdapter: newAdapter,
		opts:       opts,
		logg:       logg,
		stores:     make(map[string]*Store),
	}
}

// Get returns the session's store, creating and hydrating it on first use.
// Hydration failures degrade to an empty cart inside the store, so Get only
// errs when the adapter itself cannot be constructed.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Store, error) {
	m.mu.Lock()
	store, ok := m.stores[sessionID]
	if !ok {
		adapter, err := m.newAdapter(sessionID)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		store, err = NewStore(adapter, m.opts)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		if m.logg != nil {
			store.OnFailure(func(f Failure) {
				lctx := m.logg.WithSessionID(context.Background(), sessionID)
				lctx = m.logg.WithField(lctx, "kind", string(f.Kind))
				m.logg.Error(lctx, "quote cart store failure", f.Err)
			})
		}
		m.stores[sessionID] = store
	}
	m.mu.Unlock()

	if err := store.Hydrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// Drop forgets the session's store. The durable snapshot is untouched, so a
// later Get rebuilds the store from persistence.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	delete(m.stores, sessionID)
	m.mu.Unlock()
}

// Len reports how many session stores are resident.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}
