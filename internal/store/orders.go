package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/localcache"
	"github.com/phytolab/orderport/internal/remote"
	"github.com/phytolab/orderport/pkg/common"
)

// Orders returns a copy of the order list, newest first.
func (s *StateStore) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Order(nil), s.orders...)
}

// OrdersByEmail returns the orders belonging to a customer e-mail.
func (s *StateStore) OrdersByEmail(email string) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Order
	for _, o := range s.orders {
		if o.CustomerEmail == email {
			out = append(out, o)
		}
	}
	return out
}

// Order finds a single order by identifier.
func (s *StateStore) Order(id int64) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

// PlaceOrder records a new order: prepend in memory, persist locally, then
// await the remote insert. This is the one deliberate exception to pure
// optimism: the caller is not told "done" before the order is durably
// recorded server-side. The local effect is kept even when the remote insert
// fails. Notification dispatch is awaited but best-effort.
func (s *StateStore) PlaceOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if order.ID == 0 {
		order.ID = common.UUIDint64()
	}
	if order.Date == "" {
		order.Date = time.Now().Format("02/01/2006")
	}
	if order.Status == "" {
		order.Status = domain.OrderReceived
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt

	s.mu.Lock()
	s.orders = append([]domain.Order{order}, s.orders...)
	data, _ := json.Marshal(s.orders)
	s.mu.Unlock()
	s.cache.Write(localcache.KeyOrders, data)

	record, _ := json.Marshal(order)
	if s.remote.Configured() {
		if err := s.remote.InsertRecord(ctx, remote.CollectionOrders, record); err != nil {
			return order, errors.Wrap(err, "remote order insert")
		}
	}

	s.notifier.OrderPlaced(ctx, order)
	return order, nil
}

// SetOrders replaces the whole order list (back-office bulk edit/delete).
func (s *StateStore) SetOrders(orders []domain.Order) {
	s.mu.Lock()
	s.orders = append([]domain.Order(nil), orders...)
	data, _ := json.Marshal(s.orders)
	s.mu.Unlock()
	s.persist(localcache.KeyOrders, remote.CollectionOrders, remote.OpReplace, data)
}

// UpdateOrderStatus changes the status of a single order in place.
func (s *StateStore) UpdateOrderStatus(id int64, status string) (domain.Order, error) {
	s.mu.Lock()
	var updated domain.Order
	found := false
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			s.orders[i].UpdatedAt = time.Now()
			updated = s.orders[i]
			found = true
			break
		}
	}
	var data []byte
	if found {
		data, _ = json.Marshal(s.orders)
	}
	s.mu.Unlock()

	if !found {
		return domain.Order{}, errors.Errorf("order %d not found", id)
	}
	s.cache.Write(localcache.KeyOrders, data)
	if s.queue != nil {
		record, _ := json.Marshal(updated)
		s.queue.Enqueue(remote.CollectionOrders, remote.OpUpdate, record)
	}
	return updated, nil
}

// handleOrderInsert merges a realtime insert push. Orders already present
// (our own inserts echo back through the channel) are skipped, which makes
// repeated deliveries idempotent.
func (s *StateStore) handleOrderInsert(record []byte) {
	var order domain.Order
	if err := json.Unmarshal(record, &order); err != nil {
		zap.L().Warn("order insert push unreadable", zap.Error(err))
		return
	}
	s.mu.Lock()
	for _, o := range s.orders {
		if o.ID == order.ID {
			s.mu.Unlock()
			return
		}
	}
	s.orders = append([]domain.Order{order}, s.orders...)
	data, _ := json.Marshal(s.orders)
	s.mu.Unlock()

	s.cache.Write(localcache.KeyOrders, data)
	s.notifier.Notify("NEW ORDER RECEIVED",
		order.Customer.CompanyName+" placed an order of "+common.FormatBRL(order.Total))
}

// handleOrderUpdate merges a realtime update push, replacing the entry in
// place and preserving list position. Last write wins; unknown orders are
// ignored.
func (s *StateStore) handleOrderUpdate(record []byte) {
	var order domain.Order
	if err := json.Unmarshal(record, &order); err != nil {
		zap.L().Warn("order update push unreadable", zap.Error(err))
		return
	}
	s.mu.Lock()
	found := false
	for i := range s.orders {
		if s.orders[i].ID == order.ID {
			s.orders[i] = order
			found = true
			break
		}
	}
	var data []byte
	if found {
		data, _ = json.Marshal(s.orders)
	}
	s.mu.Unlock()

	if !found {
		return
	}
	s.cache.Write(localcache.KeyOrders, data)
	s.notifier.Notify("ORDER UPDATE",
		"Order #"+order.Code()+" is now: "+order.Status)
}
