package store

import (
	"context"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/localcache"
	"github.com/phytolab/orderport/internal/remote"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SyncState tracks how far a collection has progressed for this session.
type SyncState int

const (
	// Cold: no data loaded yet.
	Cold SyncState = iota
	// LocallyHydrated: populated from the local cache; consumers may read.
	LocallyHydrated
	// RemotelySynced: the remote snapshot overwrote memory and cache once.
	// Terminal for the session; only incremental order pushes follow.
	RemotelySynced
)

// Notifier surfaces order activity outside the store. Implementations must be
// best-effort; a notification failure never fails the mutation that caused it.
type Notifier interface {
	// OrderPlaced dispatches the checkout notification (webhook, e-mail).
	OrderPlaced(ctx context.Context, order domain.Order)
	// Notify surfaces a user-facing alert (realtime order activity).
	Notify(title, body string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) OrderPlaced(context.Context, domain.Order) {}
func (NopNotifier) Notify(string, string)                     {}

type sessionState struct {
	user *domain.User
	cart []domain.CartItem
}

// StateStore is the single coordination point reconciling in-memory state,
// the local cache and the remote service for all collections. It is
// explicitly constructed and torn down; consumers receive it by reference.
//
// Mutations follow one protocol: compute the new value, update memory under
// the lock, persist to the local cache, then fire remote persistence through
// the write-ahead queue without waiting. Checkout is the one operation that
// awaits the remote insert before declaring success.
type StateStore struct {
	mu       sync.RWMutex
	cache    *localcache.Cache
	remote   remote.Client
	queue    *remote.Queue
	notifier Notifier

	products []domain.Product
	settings domain.SiteSettings
	orders   []domain.Order
	users    []domain.User
	sessions map[string]*sessionState
	states   map[string]SyncState
}

func New(cache *localcache.Cache, client remote.Client, queue *remote.Queue, notifier Notifier) *StateStore {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &StateStore{
		cache:    cache,
		remote:   client,
		queue:    queue,
		notifier: notifier,
		settings: domain.DefaultSettings(),
		sessions: make(map[string]*sessionState),
		states: map[string]SyncState{
			remote.CollectionProducts: Cold,
			remote.CollectionSettings: Cold,
			remote.CollectionOrders:   Cold,
			remote.CollectionUsers:    Cold,
		},
	}
}

// State reports the sync state of a collection.
func (s *StateStore) State(collection string) SyncState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[collection]
}

// Hydrate populates memory from the local cache. It runs synchronously before
// the first consumer reads; missing or corrupt entries leave the built-in
// defaults in place.
func (s *StateStore) Hydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.cache.ReadAll(localcache.KeyProducts); ok {
		var rows []domain.Product
		if err := json.Unmarshal(data, &rows); err == nil {
			s.products = rows
		}
	}
	if data, ok := s.cache.ReadAll(localcache.KeySettings); ok {
		s.settings = decodeSettings(data)
	}
	if data, ok := s.cache.ReadAll(localcache.KeyOrders); ok {
		var rows []domain.Order
		if err := json.Unmarshal(data, &rows); err == nil {
			s.orders = rows
		}
	}
	if data, ok := s.cache.ReadAll(localcache.KeyUsers); ok {
		var rows []domain.User
		if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
			s.users = rows
		}
	}
	for k := range s.states {
		s.states[k] = LocallyHydrated
	}

	if err := s.cache.Broadcaster().Subscribe(s.applyBroadcast); err != nil {
		zap.L().Error("statestore broadcast subscribe failed", zap.Error(err))
	}
}

// decodeSettings merges a stored settings snapshot over the defaults, so
// fields absent from older snapshots keep their fallback values.
func decodeSettings(data []byte) domain.SiteSettings {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		zap.L().Warn("settings snapshot unreadable, using defaults", zap.Error(err))
		return domain.DefaultSettings()
	}
	merged, err := domain.MergeSettings(raw)
	if err != nil {
		zap.L().Warn("settings merge failed, using defaults", zap.Error(err))
		return domain.DefaultSettings()
	}
	return merged
}

// SyncRemote performs the one-shot reconciliation against the remote store
// and opens the realtime order subscription. When the remote service is
// unreachable or unconfigured, collections stay locally hydrated for the rest
// of the session.
func (s *StateStore) SyncRemote(ctx context.Context) error {
	if !s.remote.Configured() {
		zap.L().Warn("remote store not configured, running in local-cache-only mode")
		return remote.ErrNotConfigured
	}

	if data, err := s.remote.FetchCollection(ctx, remote.CollectionProducts); err == nil {
		var rows []domain.Product
		if jerr := json.Unmarshal(data, &rows); jerr == nil && len(rows) > 0 {
			s.overwrite(remote.CollectionProducts, localcache.KeyProducts, data, func() {
				s.products = rows
			})
		}
	} else {
		zap.L().Warn("remote products fetch failed", zap.Error(err))
	}

	if data, err := s.remote.FetchCollection(ctx, remote.CollectionSettings); err == nil {
		merged := decodeSettings(data)
		fresh, _ := json.Marshal(merged)
		s.overwrite(remote.CollectionSettings, localcache.KeySettings, fresh, func() {
			s.settings = merged
		})
	} else {
		zap.L().Warn("remote settings fetch failed", zap.Error(err))
	}

	if data, err := s.remote.FetchCollection(ctx, remote.CollectionOrders); err == nil {
		var rows []domain.Order
		if jerr := json.Unmarshal(data, &rows); jerr == nil {
			s.overwrite(remote.CollectionOrders, localcache.KeyOrders, data, func() {
				s.orders = rows
			})
		}
	} else {
		zap.L().Warn("remote orders fetch failed", zap.Error(err))
	}

	if data, err := s.remote.FetchCollection(ctx, remote.CollectionUsers); err == nil {
		var rows []domain.User
		if jerr := json.Unmarshal(data, &rows); jerr == nil && len(rows) > 0 {
			s.overwrite(remote.CollectionUsers, localcache.KeyUsers, data, func() {
				s.users = rows
			})
		}
	} else {
		zap.L().Warn("remote users fetch failed", zap.Error(err))
	}

	// Events missed before this point are covered by the fetch above; events
	// missed during later disconnects are lost until the next full restart.
	if err := s.remote.Subscribe(remote.ChannelOrders, s.handleOrderInsert, s.handleOrderUpdate); err != nil {
		return errors.Wrap(err, "subscribe order activity")
	}
	return nil
}

func (s *StateStore) overwrite(collection, key string, data []byte, assign func()) {
	s.mu.Lock()
	assign()
	s.states[collection] = RemotelySynced
	s.mu.Unlock()
	s.cache.Write(key, data)
}

// persist writes the marshaled value to the local cache and enqueues the
// remote apply. Callers hold no locks.
func (s *StateStore) persist(key, collection, op string, data []byte) {
	s.cache.Write(key, data)
	if s.queue != nil {
		s.queue.Enqueue(collection, op, data)
	}
}

// Products returns a copy of the catalog.
func (s *StateStore) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.products...)
}

// Settings returns the current settings aggregate, never a zero value.
func (s *StateStore) Settings() domain.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetProducts replaces the whole catalog (back-office bulk save).
func (s *StateStore) SetProducts(products []domain.Product) {
	s.mu.Lock()
	s.products = append([]domain.Product(nil), products...)
	data, _ := json.Marshal(s.products)
	s.mu.Unlock()
	s.persist(localcache.KeyProducts, remote.CollectionProducts, remote.OpReplace, data)
}

// SetSettings replaces the settings aggregate wholesale.
func (s *StateStore) SetSettings(settings domain.SiteSettings) {
	s.mu.Lock()
	s.settings = settings
	data, _ := json.Marshal(settings)
	s.mu.Unlock()
	s.persist(localcache.KeySettings, remote.CollectionSettings, remote.OpUpdate, data)
}

// applyBroadcast merges cache changes written by other store instances
// sharing the same broadcast channel. Changes with our own origin tag are
// skipped: a writer already holds the freshest state.
func (s *StateStore) applyBroadcast(origin, key string, value []byte) {
	if origin == s.cache.Origin() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch key {
	case localcache.KeyProducts:
		var rows []domain.Product
		if value != nil && json.Unmarshal(value, &rows) == nil {
			s.products = rows
		}
	case localcache.KeySettings:
		if value != nil {
			s.settings = decodeSettings(value)
		}
	case localcache.KeyOrders:
		var rows []domain.Order
		if value != nil && json.Unmarshal(value, &rows) == nil {
			s.orders = rows
		}
	case localcache.KeyUsers:
		var rows []domain.User
		if value != nil && json.Unmarshal(value, &rows) == nil {
			s.users = rows
		}
	default:
		s.applySessionBroadcast(key, value)
	}
}

// Close releases nothing owned elsewhere; the cache and queue are closed by
// the application that opened them.
func (s *StateStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*sessionState)
}
