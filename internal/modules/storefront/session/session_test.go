package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/datalayer"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks/logger"
)

func TestCartOperations(t *testing.T) {
	s := New("s-1", domain.Environment{URL: "http://localhost/"}, "DUKE-CART-")
	shirt := domain.Product{ID: "Shirts-0", Price: 1000}
	tee := domain.Product{ID: "T-Shirts-1", Price: 700}

	s.AddItem(shirt, 1)
	s.AddItem(tee, 0)
	merged := s.AddItem(shirt, 2)

	if merged.Quantity != 3 {
		t.Errorf("AddItem() merged quantity = %d, want 3", merged.Quantity)
	}
	items := s.Items()
	if len(items) != 2 || items[0].Product.ID != "Shirts-0" || items[1].Quantity != 1 {
		t.Fatalf("Items() = %+v", items)
	}

	items[0].Quantity = 99
	if got, _ := s.Item("Shirts-0"); got.Quantity != 3 {
		t.Errorf("Items() must return a copy, quantity = %d", got.Quantity)
	}

	removed, ok := s.RemoveItem("Shirts-0")
	if !ok || removed.Quantity != 3 {
		t.Errorf("RemoveItem() = %+v, %v", removed, ok)
	}
	if _, ok := s.RemoveItem("missing"); ok {
		t.Errorf("RemoveItem(missing) = true")
	}

	s.ClearCart()
	if len(s.Items()) != 0 {
		t.Errorf("ClearCart() left %d items", len(s.Items()))
	}
}

func TestCartIDIsStable(t *testing.T) {
	s := New("s-1", domain.Environment{}, "DUKE-CART-")
	calls := 0
	s.now = func() time.Time {
		calls++
		return time.UnixMilli(1700000000000 + int64(calls))
	}

	first := s.CartID()
	s.ClearCart()
	second := s.CartID()

	if first != second {
		t.Errorf("CartID() changed within the session: %s then %s", first, second)
	}
	if !strings.HasPrefix(first, "DUKE-CART-17") {
		t.Errorf("CartID() = %s", first)
	}
	if calls != 1 {
		t.Errorf("CartID() consulted the clock %d times, want 1", calls)
	}
}

func TestTransition(t *testing.T) {
	s := New("s-1", domain.Environment{}, "")
	if !s.Identity().IsAnonymous() {
		t.Fatalf("new session identity = %v, want anonymous", s.Identity())
	}

	failure := errors.New("rejected")
	got, err := s.Transition(func(domain.Identity) (domain.Identity, error) {
		return domain.NewGuestIdentity("g"), failure
	})
	if !errors.Is(err, failure) || !got.IsAnonymous() || !s.Identity().IsAnonymous() {
		t.Errorf("failed Transition() changed identity to %v", s.Identity())
	}

	got, err = s.Transition(func(domain.Identity) (domain.Identity, error) {
		return domain.NewGuestIdentity("g"), nil
	})
	if err != nil || !got.IsGuest() || s.Identity().Guest.TransientID != "g" {
		t.Errorf("Transition() = %v, %v", got, err)
	}
}

func TestNavigate(t *testing.T) {
	s := New("s-1", domain.Environment{URL: "http://a/", Referrer: "http://r/"}, "")
	s.Navigate("http://b/", "")
	env := s.Environment()
	if env.URL != "http://b/" || env.Referrer != "http://r/" {
		t.Errorf("Navigate() env = %+v", env)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(time.Minute, 10, "DUKE-CART-", logger.New("info", false))
	defer r.Close()

	s := r.Create(domain.Environment{Host: "localhost"})
	got, err := r.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if _, err := r.Get("unknown"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrSessionNotFound", err)
	}

	other := r.Create(domain.Environment{})
	if other.ID() == s.ID() {
		t.Errorf("Create() reused session id %s", s.ID())
	}
	if r.Size() != 2 {
		t.Errorf("Size() = %d, want 2", r.Size())
	}
}

func TestRegistryExpiryReleasesDataLayer(t *testing.T) {
	r := NewRegistry(time.Minute, 1, "DUKE-CART-", logger.New("info", false))
	defer r.Close()

	log := datalayer.New()
	r.OnExpire(func(id string) { log.Forget(id) })

	first := r.Create(domain.Environment{})
	log.Push(domain.DataLayerEntry{Event: domain.EventPageView, SessionID: first.ID()})
	log.Push(domain.DataLayerEntry{Event: domain.EventCategoryView, SessionID: first.ID()})

	second := r.Create(domain.Environment{})
	log.Push(domain.DataLayerEntry{Event: domain.EventPageView, SessionID: second.ID()})

	if _, err := r.Get(first.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(evicted) error = %v, want ErrSessionNotFound", err)
	}
	entries := log.Entries()
	if len(entries) != 1 || entries[0].SessionID != second.ID() {
		t.Fatalf("data layer after eviction = %+v, want only %s", entries, second.ID())
	}
	if log.Total() != 3 {
		t.Errorf("Total() = %d, want 3", log.Total())
	}
}
