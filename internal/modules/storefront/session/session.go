// Package session holds the per-shopper application state read by the builders and the
// dispatcher: ambient environment, cart, cart identifier and current identity.
package session

import (
	"strconv"
	"sync"
	"time"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
)

// Session is the explicit state object passed to every builder and emission.
// It is safe for concurrent use.
type Session struct {
	mu           sync.Mutex
	id           string
	createdAt    time.Time
	env          domain.Environment
	cart         []domain.CartItem
	cartID       string
	cartIDPrefix string
	identity     domain.Identity
	now          func() time.Time
}

// New creates an anonymous session with an empty cart.
func New(id string, env domain.Environment, cartIDPrefix string) *Session {
	return &Session{
		id:           id,
		createdAt:    time.Now().UTC(),
		env:          env,
		cartIDPrefix: cartIDPrefix,
		identity:     domain.AnonymousIdentity(),
		now:          time.Now,
	}
}

// ID returns the session identifier. It is the primary identity in the identity map.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) Environment() domain.Environment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env
}

// Navigate records the ambient URL and referrer reported for the current view.
// Empty values keep the previous ones.
func (s *Session) Navigate(url, referrer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if url != "" {
		s.env.URL = url
	}
	if referrer != "" {
		s.env.Referrer = referrer
	}
}

// Items returns a copy of the cart in insertion order.
func (s *Session) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.CartItem, len(s.cart))
	copy(items, s.cart)
	return items
}

// Item returns the cart line for productID.
func (s *Session) Item(productID string) (domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.cart {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return domain.CartItem{}, false
}

// AddItem adds quantity units of p, merging with an existing line. Quantities below 1 add one unit.
func (s *Session) AddItem(p domain.Product, quantity int) domain.CartItem {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].Product.ID == p.ID {
			s.cart[i].Quantity += quantity
			return s.cart[i]
		}
	}
	item := domain.CartItem{Product: p, Quantity: quantity}
	s.cart = append(s.cart, item)
	return item
}

// RemoveItem drops the line for productID and returns it.
func (s *Session) RemoveItem(productID string) (domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.cart {
		if item.Product.ID == productID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return item, true
		}
	}
	return domain.CartItem{}, false
}

// ClearCart empties the cart. The cart identifier is kept for the session.
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

// CartID returns the cart identifier, assigning it on first use.
func (s *Session) CartID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cartID == "" {
		s.cartID = s.cartIDPrefix + strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	return s.cartID
}

// Identity returns the current identity.
func (s *Session) Identity() domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Transition replaces the identity with the result of fn, atomically with respect to other
// transitions. When fn fails the identity is left unchanged.
func (s *Session) Transition(fn func(current domain.Identity) (domain.Identity, error)) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.identity)
	if err != nil {
		return s.identity, err
	}
	s.identity = next
	return next, nil
}
