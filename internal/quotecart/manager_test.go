package quotecart

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestManagerReturnsSameStorePerSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	adapters := make(map[string]*MemoryAdapter)
	var mu sync.Mutex
	manager := NewManager(func(sessionID string) (Adapter, error) {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := adapters[sessionID]; !ok {
			adapters[sessionID] = NewMemoryAdapter()
		}
		return adapters[sessionID], nil
	}, Options{}, nil)

	a1, err := manager.Get(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	a2, err := manager.Get(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if a1 != a2 {
		t.Fatal("same session must share one store")
	}

	b, err := manager.Get(ctx, "sess-b")
	if err != nil {
		t.Fatalf("get other: %v", err)
	}
	if b == a1 {
		t.Fatal("different sessions must not share a store")
	}
	if manager.Len() != 2 {
		t.Fatalf("expected 2 resident stores, got %d", manager.Len())
	}
}

func TestManagerConcurrentFirstAccessHydratesOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	blocking := newBlockingAdapter(NewMemoryAdapter())
	manager := NewManager(func(string) (Adapter, error) {
		return blocking, nil
	}, Options{}, nil)

	var wg sync.WaitGroup
	stores := make([]*Store, 4)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store, err := manager.Get(ctx, "sess-1")
			if err != nil {
				t.Errorf("get: %v", err)
				return
			}
			stores[i] = store
		}(i)
	}
	<-blocking.started
	close(blocking.release)
	wg.Wait()

	for i := 1; i < len(stores); i++ {
		if stores[i] != stores[0] {
			t.Fatal("concurrent first access split the store")
		}
	}
	if got := blocking.loadCount(); got != 1 {
		t.Fatalf("expected one hydration load, got %d", got)
	}
}

func TestManagerDropRebuildsFromPersistence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	adapter := NewMemoryAdapter()
	manager := NewManager(func(string) (Adapter, error) {
		return adapter, nil
	}, Options{}, nil)

	store, err := manager.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	id, err := store.AddItem(ctx, testCandidate("Steam Deck", "210.00"))
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	manager.Drop("sess-1")
	if manager.Len() != 0 {
		t.Fatalf("expected empty registry after drop, got %d", manager.Len())
	}

	rebuilt, err := manager.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get after drop: %v", err)
	}
	if rebuilt == store {
		t.Fatal("dropped store must not be reused")
	}
	items := rebuilt.Items()
	if len(items) != 1 || items[0].ID != id {
		t.Fatal("rebuilt store must hydrate the persisted snapshot")
	}
}

func TestManagerPropagatesAdapterFactoryError(t *testing.T) {
	t.Parallel()
	manager := NewManager(func(sessionID string) (Adapter, error) {
		return nil, fmt.Errorf("no backend for %s", sessionID)
	}, Options{}, nil)

	if _, err := manager.Get(context.Background(), "sess-1"); err == nil {
		t.Fatal("expected factory error to surface")
	}
	if manager.Len() != 0 {
		t.Fatal("failed construction must not leave a resident store")
	}
}
