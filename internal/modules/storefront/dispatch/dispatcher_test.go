package dispatch

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/datalayer"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/session"
	"github.com/gaborage/go-bricks/logger"
)

var testSite = domain.Site{Section: "duke-apparel", Language: "en-IN", Currency: "INR", Name: "duke.com", Brand: "Duke", PagePrefix: "duke"}

type recordingOfferer struct {
	mu   sync.Mutex
	subs []domain.Submission
	err  error
	hook func()
}

func (r *recordingOfferer) Offer(sub domain.Submission) error {
	if r.hook != nil {
		r.hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, sub)
	return r.err
}

func newTestDispatcher(out Offerer) (*Dispatcher, *datalayer.Log) {
	log := datalayer.New()
	d := NewDispatcher(log, out, testSite, "storefront", logger.New("info", false))
	d.now = func() time.Time { return time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC) }
	return d, log
}

func newTestSession() *session.Session {
	return session.New("ecid-1", domain.Environment{
		Host:      "shop.test",
		URL:       "https://shop.test/#cart",
		Referrer:  "https://search.test/",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64)",
	}, "DUKE-CART-")
}

func pageBody(name, pageType string) domain.Body {
	return domain.Body{"page": domain.PageContext{PageName: name, PageType: pageType}}
}

func TestEmitAppendsBeforeOffer(t *testing.T) {
	out := &recordingOfferer{}
	d, log := newTestDispatcher(out)
	out.hook = func() {
		assert.Equal(t, 1, log.Len(), "data layer entry must exist before the submission is offered")
	}

	d.Emit(newTestSession(), domain.EventPageView, domain.EventTypePageView, pageBody("duke:cart", domain.PageTypeCart), nil)

	entries := log.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, domain.EventPageView, e.Event)
	assert.Equal(t, domain.PageSummary{PageName: "duke:cart", PageType: domain.PageTypeCart}, e.PageContext)
	assert.Equal(t, "ecid-1", e.SessionID)
	assert.NotEmpty(t, e.ID)

	require.Len(t, out.subs, 1)
	x := out.subs[0].XDM
	assert.Equal(t, domain.EventTypePageView, x.EventType)
	assert.Equal(t, "2025-03-01T10:30:00.000Z", x.Timestamp)
	assert.Equal(t, 1, x.Web.WebPageDetails.PageViews.Value)
	assert.Equal(t, "https://shop.test/#cart", x.Web.WebPageDetails.URL)
	assert.Equal(t, "https://search.test/", x.Web.WebReferrer.URL)
	assert.Equal(t, domain.DeviceDesktop, x.Device.Type)
	assert.Contains(t, out.subs[0].Data, "storefront")
}

func TestEmitPageViewsOnlyForPageViewType(t *testing.T) {
	out := &recordingOfferer{}
	d, _ := newTestDispatcher(out)

	d.Emit(newTestSession(), domain.EventProductView, domain.EventTypeProductView, pageBody("duke:pdp:Shirts-0", domain.PageTypeProduct), nil)

	require.Len(t, out.subs, 1)
	assert.Equal(t, 0, out.subs[0].XDM.Web.WebPageDetails.PageViews.Value)
}

func TestEmitKeepsCallOrder(t *testing.T) {
	d, log := newTestDispatcher(&recordingOfferer{})
	sess := newTestSession()
	names := []string{domain.EventPageView, domain.EventCategoryView, domain.EventProductView, domain.EventCartAdd}

	for _, n := range names {
		d.Emit(sess, n, domain.EventTypeLinkClick, pageBody("p", "t"), nil)
	}

	entries := log.Entries()
	require.Len(t, entries, len(names))
	for i, n := range names {
		assert.Equal(t, n, entries[i].Event)
	}
}

func TestEmitAppliesOverrides(t *testing.T) {
	out := &recordingOfferer{}
	d, _ := newTestDispatcher(out)

	d.Emit(newTestSession(), domain.EventCategoryTabClick, domain.EventTypeLinkClick, pageBody("duke:home", domain.PageTypeHome), &domain.Overrides{
		Web: &domain.Web{WebInteraction: &domain.WebInteraction{Name: "category-tab:Shoes", Type: domain.InteractionClick, LinkClicks: domain.Measure{Value: 1}}},
		Commerce: &domain.Commerce{
			Order: &domain.Order{CurrencyCode: "INR"},
		},
	})

	require.Len(t, out.subs, 1)
	x := out.subs[0].XDM
	assert.Equal(t, "category-tab:Shoes", x.Web.WebInteraction.Name)
	assert.Nil(t, x.Web.WebPageDetails, "an override web section replaces the base one")
	assert.Nil(t, x.Web.WebReferrer)
	assert.Equal(t, "INR", x.Commerce.Order.CurrencyCode)
	assert.NotNil(t, x.Device, "sections the override does not set are kept")
}

func TestEmitPageViewOverrideDropsReferrer(t *testing.T) {
	out := &recordingOfferer{}
	d, _ := newTestDispatcher(out)

	d.Emit(newTestSession(), domain.EventPageView, domain.EventTypePageView, pageBody("duke:home", domain.PageTypeHome), &domain.Overrides{
		Web: &domain.Web{WebPageDetails: &domain.WebPageDetails{Name: "duke:home", URL: "https://shop.test/", PageViews: domain.Measure{Value: 1}}},
	})

	require.Len(t, out.subs, 1)
	x := out.subs[0].XDM
	assert.Equal(t, 1, x.Web.WebPageDetails.PageViews.Value)
	assert.Nil(t, x.Web.WebReferrer)
	assert.Nil(t, x.Commerce)
}

func TestEmitMobileDevice(t *testing.T) {
	out := &recordingOfferer{}
	d, _ := newTestDispatcher(out)
	sess := session.New("s", domain.Environment{UserAgent: "Mozilla/5.0 (Linux; Android 14) Mobile", ScreenWidth: 390, ScreenHeight: 844}, "C-")

	d.Emit(sess, domain.EventPageView, domain.EventTypePageView, pageBody("p", "t"), nil)

	require.Len(t, out.subs, 1)
	assert.Equal(t, &domain.Device{ScreenWidth: 390, ScreenHeight: 844, Type: domain.DeviceMobile}, out.subs[0].XDM.Device)
}

func TestEmitContainsFailures(t *testing.T) {
	t.Run("offer error", func(t *testing.T) {
		d, log := newTestDispatcher(&recordingOfferer{err: ErrQueueFull})
		assert.NotPanics(t, func() {
			d.Emit(newTestSession(), domain.EventCartAdd, domain.EventTypeProductListAdd, pageBody("p", "t"), nil)
		})
		assert.Equal(t, 1, log.Len())
	})

	t.Run("panicking outbound", func(t *testing.T) {
		d, log := newTestDispatcher(&recordingOfferer{hook: func() { panic("boom") }})
		assert.NotPanics(t, func() {
			d.Emit(newTestSession(), domain.EventCartAdd, domain.EventTypeProductListAdd, pageBody("p", "t"), nil)
		})
		assert.Equal(t, 1, log.Len())
	})

	t.Run("missing page", func(t *testing.T) {
		out := &recordingOfferer{}
		d, log := newTestDispatcher(out)
		d.Emit(newTestSession(), "custom:event", domain.EventTypeLinkClick, nil, nil)

		require.Equal(t, 1, log.Len())
		assert.Equal(t, domain.PageSummary{}, log.Entries()[0].PageContext)
		assert.Len(t, out.subs, 1)
	})
}

func TestEmitIdentityStitch(t *testing.T) {
	out := &recordingOfferer{}
	d, log := newTestDispatcher(out)
	user := domain.AuthenticatedUser{
		MerchantUserID: "DUKE-USR-1001",
		EmailHash:      "sha256_e",
		PhoneHash:      "sha256_p",
		LoyaltyTier:    domain.TierPlatinum,
		FirstName:      "Arjun",
		LastName:       "Sharma",
	}

	d.EmitIdentityStitch(newTestSession(), user, domain.LoginMethodSignIn)

	entries := log.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, domain.EventUserLogin, e.Event)
	assert.Equal(t, "signin", e.EventInfo["method"])
	assert.Equal(t, "DUKE-USR-1001", e.EventInfo["merchantUserID"])
	assert.Equal(t, false, e.EventInfo["isGuest"])
	require.NotNil(t, e.User)
	assert.True(t, e.User.IsAuthenticated)
	require.NotNil(t, e.Page)
	assert.Equal(t, "duke:login", e.Page.PageName)
	assert.Equal(t, "shop.test", e.Page.Server)

	require.Len(t, out.subs, 1)
	x := out.subs[0].XDM
	assert.Equal(t, domain.EventTypeLogin, x.EventType)
	primary, ok := x.IdentityMap.Primary()
	require.True(t, ok)
	assert.Equal(t, "ecid-1", primary.ID)
	assert.Equal(t, "DUKE-USR-1001", x.IdentityMap[domain.NamespaceMerchant][0].ID)
	assert.Equal(t, "sha256_e", x.IdentityMap[domain.NamespaceEmail][0].ID)
	assert.Equal(t, "sha256_p", x.IdentityMap[domain.NamespacePhone][0].ID)
	assert.Equal(t, &domain.StorefrontUser{MerchantUserID: "DUKE-USR-1001", LoyaltyTier: domain.TierPlatinum}, x.Storefront.User)
	assert.Nil(t, x.Web)

	data, ok := out.subs[0].Data["storefront"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "signin", data["loginMethod"])
}

func TestEmissionErrorUnwrap(t *testing.T) {
	err := &EmissionError{Event: "cart:add", Stage: StageOffer, Err: ErrQueueFull}
	assert.True(t, errors.Is(err, ErrQueueFull))
	assert.Contains(t, err.Error(), "cart:add")
}
