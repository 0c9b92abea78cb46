package store

import (
	"strings"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/localcache"
)

// Per-session cart and current-user state. Sessions are rebuilt lazily from
// the local cache, so a cart survives restarts before any remote fetch
// resolves.

// getSession returns the session state, hydrating it from the cache on first
// access. Callers must hold s.mu.
func (s *StateStore) getSession(sid string) *sessionState {
	if sess, ok := s.sessions[sid]; ok {
		return sess
	}
	sess := &sessionState{}
	if data, ok := s.cache.ReadAll(localcache.SessionKey(localcache.KeyPrefixCart, sid)); ok {
		var cart []domain.CartItem
		if err := json.Unmarshal(data, &cart); err == nil {
			sess.cart = cart
		}
	}
	if data, ok := s.cache.ReadAll(localcache.SessionKey(localcache.KeyPrefixUser, sid)); ok {
		var u domain.User
		if err := json.Unmarshal(data, &u); err == nil {
			sess.user = &u
		}
	}
	s.sessions[sid] = sess
	return sess
}

func (s *StateStore) persistCart(sid string, cart []domain.CartItem) {
	data, _ := json.Marshal(cart)
	s.cache.Write(localcache.SessionKey(localcache.KeyPrefixCart, sid), data)
}

// Cart returns a copy of the session's cart lines.
func (s *StateStore) Cart(sid string) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getSession(sid)
	return append([]domain.CartItem(nil), sess.cart...)
}

// AddToCart increments the quantity of an existing line for the product, or
// appends a new line.
func (s *StateStore) AddToCart(sid string, product domain.Product, quantity int) {
	s.mu.Lock()
	sess := s.getSession(sid)
	found := false
	for i := range sess.cart {
		if sess.cart[i].Product.ID == product.ID {
			sess.cart[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		sess.cart = append(sess.cart, domain.CartItem{Product: product, Quantity: quantity})
	}
	cart := append([]domain.CartItem(nil), sess.cart...)
	s.mu.Unlock()
	s.persistCart(sid, cart)
}

// RemoveFromCart deletes the line for the product outright.
func (s *StateStore) RemoveFromCart(sid string, productID int64) {
	s.mu.Lock()
	sess := s.getSession(sid)
	kept := sess.cart[:0]
	for _, item := range sess.cart {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	sess.cart = kept
	cart := append([]domain.CartItem(nil), sess.cart...)
	s.mu.Unlock()
	s.persistCart(sid, cart)
}

// UpdateCartQuantity sets the quantity of an existing line, clamped to a
// minimum of 1. Removal goes through RemoveFromCart, never quantity zero.
func (s *StateStore) UpdateCartQuantity(sid string, productID int64, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	sess := s.getSession(sid)
	for i := range sess.cart {
		if sess.cart[i].Product.ID == productID {
			sess.cart[i].Quantity = quantity
			break
		}
	}
	cart := append([]domain.CartItem(nil), sess.cart...)
	s.mu.Unlock()
	s.persistCart(sid, cart)
}

// ClearCart empties the session's cart (after checkout).
func (s *StateStore) ClearCart(sid string) {
	s.mu.Lock()
	sess := s.getSession(sid)
	sess.cart = nil
	s.mu.Unlock()
	s.persistCart(sid, nil)
}

// CartTotal sums price times quantity over the session's cart.
func (s *StateStore) CartTotal(sid string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getSession(sid)
	total := 0.0
	for _, item := range sess.cart {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

// applySessionBroadcast merges foreign cart/user cache changes into the
// matching session. Callers hold s.mu.
func (s *StateStore) applySessionBroadcast(key string, value []byte) {
	prefix, sid, ok := splitSessionKey(key)
	if !ok {
		return
	}
	sess := s.getSession(sid)
	switch prefix {
	case localcache.KeyPrefixCart:
		var cart []domain.CartItem
		if value != nil && json.Unmarshal(value, &cart) == nil {
			sess.cart = cart
		} else if value == nil {
			sess.cart = nil
		}
	case localcache.KeyPrefixUser:
		if value == nil {
			sess.user = nil
			return
		}
		var u domain.User
		if json.Unmarshal(value, &u) == nil {
			sess.user = &u
		}
	}
}

func splitSessionKey(key string) (prefix, sid string, ok bool) {
	idx := strings.IndexByte(key, '/')
	if idx <= 0 || idx == len(key)-1 {
		return "", "", false
	}
	return key[:idx], key[idx+1:], true
}
