package quotecart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/dvalenzuela/retrade-backend/pkg/errors"
	"github.com/dvalenzuela/retrade-backend/pkg/metrics"
)

// DefaultMaxItems bounds the cart when no explicit cap is configured.
const DefaultMaxItems = 50

// Snapshot is the immutable view handed to subscribers and read paths.
type Snapshot struct {
	Items      []QuoteItem     `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemCount  int             `json:"item_count"`
}

// FailureKind names the async failure channels of the store.
type FailureKind string

const (
	FailureHydration   FailureKind = "hydration"
	FailurePersistence FailureKind = "persistence"
)

// Failure is delivered to failure observers; it never crosses the store
// boundary as a returned error.
type Failure struct {
	Kind FailureKind
	Err  error
}

// Options tunes a Store. Zero values fall back to sane defaults.
type Options struct {
	MaxItems int
	Metrics  *metrics.CartMetrics
	Now      func() time.Time
	NewID    func() uuid.UUID
}

// Store owns a session's pending device quotes. It is the single writer of
// its item sequence: items enter through AddItem and leave through RemoveItem
// or Clear, every mutation persists a fresh snapshot, and subscribers see the
// result synchronously. Mutations that arrive before Hydrate finishes are
// queued and applied on top of the hydrated snapshot, so hydration always
// logically precedes any mutation's visible effect.
type Store struct {
	adapter  Adapter
	metrics  *metrics.CartMetrics
	maxItems int
	now      func() time.Time
	newID    func() uuid.UUID

	mu          sync.Mutex
	items       []QuoteItem
	hydrated    bool
	hydrating   bool
	hydrateDone chan struct{}
	pending     []func(ctx context.Context)
	pendingAdds int

	nextSubID   int
	subscribers map[int]func(Snapshot)

	nextObsID int
	observers map[int]func(Failure)
}

// NewStore builds an empty, not-yet-hydrated store on top of the adapter.
func NewStore(adapter Adapter, opts Options) (*Store, error) {
	if adapter == nil {
		return nil, errors.New("persistence adapter is required")
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.New
	}
	return &Store{
		adapter:     adapter,
		metrics:     opts.Metrics,
		maxItems:    opts.MaxItems,
		now:         opts.Now,
		newID:       opts.NewID,
		subscribers: make(map[int]func(Snapshot)),
		observers:   make(map[int]func(Failure)),
	}, nil
}

// Hydrate loads the persisted snapshot and replaces the in-memory sequence.
// It runs at most once per store lifetime: a second call while a load is in
// flight joins the in-flight attempt, and later calls are no-ops. A missing
// or unreadable snapshot degrades to an empty cart; the store is marked
// hydrated either way. Queued mutations are applied in arrival order after
// the snapshot lands.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return nil
	}
	if s.hydrating {
		done := s.hydrateDone
		s.mu.Unlock()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.hydrating = true
	s.hydrateDone = make(chan struct{})
	s.mu.Unlock()

	start := s.now()
	loaded, err := s.adapter.Load(ctx)
	s.metrics.ObserveHydration(s.now().Sub(start))

	missing := errors.Is(err, ErrSnapshotNotFound)
	if err != nil {
		loaded = nil
	}

	s.mu.Lock()
	s.items = loaded
	s.hydrated = true
	s.hydrating = false
	queued := s.pending
	s.pending = nil
	s.pendingAdds = 0
	close(s.hydrateDone)
	s.mu.Unlock()

	if err != nil && !missing {
		s.metrics.IncFailure(string(FailureHydration))
		s.reportFailure(Failure{Kind: FailureHydration, Err: err})
	}

	for _, apply := range queued {
		apply(ctx)
	}

	if err == nil && len(queued) == 0 {
		s.notify(s.Current())
	}
	return nil
}

// Hydrated reports whether the initial snapshot load has completed.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// AddItem validates the candidate, assigns it a fresh id, and appends it to
// the sequence. There is no deduplication: the same device added twice yields
// two items. The generated id is returned immediately even when the mutation
// is queued behind hydration.
func (s *Store) AddItem(ctx context.Context, candidate Candidate) (uuid.UUID, error) {
	if err := candidate.Validate(); err != nil {
		return uuid.Nil, err
	}

	s.mu.Lock()
	if len(s.items)+s.pendingAdds >= s.maxItems {
		s.mu.Unlock()
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is full").
			WithDetails(map[string]any{"max_items": s.maxItems})
	}
	id := s.newID()
	if !s.hydrated {
		s.pendingAdds++
		s.pending = append(s.pending, func(ctx context.Context) {
			s.applyAdd(ctx, id, candidate)
		})
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	s.applyAdd(ctx, id, candidate)
	return id, nil
}

func (s *Store) applyAdd(ctx context.Context, id uuid.UUID, candidate Candidate) {
	s.mu.Lock()
	item := candidate.toItem(id, s.now().UTC())
	s.items = append(s.items, item)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.IncOperation("add_item")
	s.persist(ctx, snap.Items)
	s.notify(snap)
}

// RemoveItem drops the item with the matching id. A miss is a no-op, not an
// error, and triggers neither persistence nor notification.
func (s *Store) RemoveItem(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	if !s.hydrated {
		s.pending = append(s.pending, func(ctx context.Context) {
			s.applyRemove(ctx, id)
		})
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.applyRemove(ctx, id)
}

func (s *Store) applyRemove(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	idx := -1
	for i, item := range s.items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.IncOperation("remove_item")
	s.persist(ctx, snap.Items)
	s.notify(snap)
}

// Clear empties the sequence unconditionally. Clearing an already-empty cart
// still persists and notifies, so a double clear is safe and observable.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	if !s.hydrated {
		s.pending = append(s.pending, s.applyClear)
		s.pendingAdds = 0
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.applyClear(ctx)
}

func (s *Store) applyClear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.IncOperation("clear")
	s.persist(ctx, snap.Items)
	s.notify(snap)
}

// Items returns a copy of the current ordered sequence.
func (s *Store) Items() []QuoteItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// TotalPrice sums the quoted prices over the current sequence.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

// ItemCount returns the current sequence length.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Current returns the snapshot of the present state.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every state change. The returned handle
// unsubscribes; calling it during a delivery round affects neither that round
// nor the other subscribers, and calling it twice is harmless.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// OnFailure registers fn for hydration/persistence failures. Same handle
// semantics as Subscribe.
func (s *Store) OnFailure(fn func(Failure)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) persist(ctx context.Context, items []QuoteItem) {
	if err := s.adapter.Save(ctx, items); err != nil {
		s.metrics.IncFailure(string(FailurePersistence))
		s.reportFailure(Failure{
			Kind: FailurePersistence,
			Err:  pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart snapshot"),
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.mu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) reportFailure(failure Failure) {
	s.mu.Lock()
	fns := make([]func(Failure), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(failure)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:      cloneItems(s.items),
		TotalPrice: totalPrice(s.items),
		ItemCount:  len(s.items),
	}
}

func totalPrice(items []QuoteItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.QuotedPrice)
	}
	return total
}
