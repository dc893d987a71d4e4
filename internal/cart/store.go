package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/alexanderop/storefront/internal/storage"
)

// Prometheus metrics.
var (
	cartMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_messages_total",
			Help: "Total number of cart messages dispatched",
		},
		[]string{"type"},
	)

	cartPersistErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_persist_errors_total",
			Help: "Total number of failed cart persistence writes",
		},
	)

	cartItemCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_item_count",
			Help: "Number of units currently in the cart",
		},
	)
)

// Store holds the current cart model and is the only place it changes. All
// mutation goes through Dispatch; reads return snapshots. Every change to
// the item collection is persisted best-effort and signalled to
// subscribers.
type Store struct {
	mu      sync.RWMutex
	model   Model
	kv      storage.KV
	logger  *zap.Logger
	subs    map[int]chan struct{}
	nextSub int
}

// NewStore creates a cart store backed by the given key-value storage. The
// cart starts empty; call Hydrate to load a previously persisted cart.
func NewStore(kv storage.KV, logger *zap.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
		subs:   make(map[int]chan struct{}),
	}
}

// Dispatch applies one message to the current model through the reducer.
// When the item collection changes in value, the new collection is
// persisted and subscribers are signalled; persistence failures are logged
// and swallowed so they never surface to the dispatching caller.
func (s *Store) Dispatch(ctx context.Context, msg Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cartMessagesTotal.WithLabelValues(msgLabel(msg)).Inc()

	prev := s.model
	next := Update(prev, msg)
	s.model = next

	if itemsEqual(prev.Items, next.Items) {
		return
	}

	cartItemCount.Set(float64(ItemCount(next)))

	// Hydration carries state that came from storage; writing it back
	// would be a redundant save of identical content.
	if _, hydrating := msg.(HydrateFromStorage); !hydrating {
		s.persist(ctx, next.Items)
	}

	s.notifyLocked()
}

// Model returns a snapshot of the current cart state. The item slice is a
// copy, so later dispatches never show through it.
func (s *Store) Model() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Model{Items: cloneItems(s.model.Items)}
}

// Summary returns the derived projections of the current cart state.
func (s *Store) Summary() Summary {
	return Summarize(s.Model())
}

// Subscribe registers a change listener. The channel receives a coalesced
// signal after every dispatch that changes the item collection. The
// returned cancel function removes the listener and closes the channel;
// calling it more than once is safe.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Hydrate loads the persisted cart into the store. It is meant to run once
// at startup. A missing key leaves the cart empty. A payload that fails to
// decode or validate is logged, deleted from storage, and likewise leaves
// the cart empty. Only storage read failures are returned.
func (s *Store) Hydrate(ctx context.Context) error {
	payload, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	if !ok {
		return nil
	}

	items, err := decodeItems(payload)
	if err != nil {
		s.logger.Warn("discarding corrupted cart payload",
			zap.String("key", StorageKey),
			zap.Error(err),
		)

		if delErr := s.kv.Delete(ctx, StorageKey); delErr != nil {
			s.logger.Error("delete corrupted cart payload",
				zap.String("key", StorageKey),
				zap.Error(delErr),
			)
		}

		return nil
	}

	s.Dispatch(ctx, HydrateFromStorage{Items: items})

	return nil
}

// persist writes the item collection under StorageKey. Failures are counted
// and logged but never returned; the store keeps operating in memory.
func (s *Store) persist(ctx context.Context, items []Item) {
	payload, err := encodeItems(items)
	if err != nil {
		cartPersistErrorsTotal.Inc()
		s.logger.Error("encode cart for persistence", zap.Error(err))

		return
	}

	if err := s.kv.Set(ctx, StorageKey, payload); err != nil {
		cartPersistErrorsTotal.Inc()
		s.logger.Error("persist cart",
			zap.String("key", StorageKey),
			zap.Error(err),
		)
	}
}

// notifyLocked signals every subscriber without blocking. A subscriber that
// has not drained its previous signal keeps a single pending one. Callers
// must hold s.mu.
func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// msgLabel names a message variant for metric labels.
func msgLabel(msg Msg) string {
	switch msg.(type) {
	case AddItem:
		return "add_item"
	case RemoveItem:
		return "remove_item"
	case UpdateQuantity:
		return "update_quantity"
	case IncrementItem:
		return "increment_item"
	case DecrementItem:
		return "decrement_item"
	case ClearCart:
		return "clear_cart"
	case HydrateFromStorage:
		return "hydrate_from_storage"
	default:
		return "unknown"
	}
}
