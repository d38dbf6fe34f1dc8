// Package tracking implements the storefront call sites: each user action gathers the
// current session state, builds its payload and hands it to the dispatcher.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/builders"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/catalog"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/fingerprint"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/identity"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/session"
)

var (
	ErrNotInCart   = errors.New("product not in cart")
	ErrEmptyCart   = errors.New("cart is empty")
	ErrUnknownPage = errors.New("unknown page")
)

// Storefront pages.
const (
	PageHome     = "home"
	PagePLP      = "plp"
	PagePDP      = "pdp"
	PageCart     = "cart"
	PageLogin    = "login"
	PageCheckout = "checkout"
	PagePayment  = "payment"
	PageThankYou = "thankyou"
)

var pageTypes = map[string]string{
	PageHome:     domain.PageTypeHome,
	PagePLP:      domain.PageTypeCategory,
	PagePDP:      domain.PageTypeProduct,
	PageCart:     domain.PageTypeCart,
	PageLogin:    domain.PageTypeLogin,
	PageCheckout: domain.PageTypeCheckout,
	PagePayment:  domain.PageTypePayment,
	PageThankYou: domain.PageTypeOrder,
}

const featuredCount = 4

// Emitter is the generic dispatcher entry point.
type Emitter interface {
	Emit(sess *session.Session, name string, eventType domain.EventType, body domain.Body, overrides *domain.Overrides)
}

// IdentityStore is the subset of *identity.Store used by the call sites.
type IdentityStore interface {
	ValidateCredentials(creds identity.Credentials) error
	SignIn(ctx context.Context, sess *session.Session, creds identity.Credentials) (domain.Identity, error)
	Register(ctx context.Context, sess *session.Session, profile identity.Profile, announce func(domain.AuthenticatedUser)) (domain.Identity, error)
	ContinueAsGuest(ctx context.Context, sess *session.Session) (domain.Identity, error)
}

// CategoryListing is a listing page as shown to the shopper.
type CategoryListing struct {
	Category string                 `json:"category"`
	Products []domain.ProductRecord `json:"products"`
}

// OrderReceipt is returned by PlaceOrder.
type OrderReceipt struct {
	OrderID      string                 `json:"orderID"`
	CustomerName string                 `json:"customerName"`
	Subtotal     int64                  `json:"subtotal"`
	Tax          int64                  `json:"tax"`
	Total        int64                  `json:"total"`
	Currency     string                 `json:"currency"`
	Products     []domain.ProductRecord `json:"products"`
}

type Tracker struct {
	emitter       Emitter
	store         IdentityStore
	catalog       catalog.Provider
	fingerprinter fingerprint.Fingerprinter
	site          domain.Site
	orderIDPrefix string
	randN         func(n int) int
	now           func() time.Time
}

func NewTracker(emitter Emitter, store IdentityStore, provider catalog.Provider, fp fingerprint.Fingerprinter, site domain.Site, orderIDPrefix string) *Tracker {
	return &Tracker{
		emitter:       emitter,
		store:         store,
		catalog:       provider,
		fingerprinter: fp,
		site:          site,
		orderIDPrefix: orderIDPrefix,
		randN:         rand.IntN,
		now:           time.Now,
	}
}

func (t *Tracker) page(sess *session.Session, name, pageType, category string) domain.PageContext {
	return builders.Page(t.site, sess.Environment(), name, pageType, category)
}

func (t *Tracker) pageName(parts ...string) string {
	return builders.PageName(t.site, parts...)
}

func interaction(name, kind string, clicks int) *domain.Overrides {
	return &domain.Overrides{
		Web: &domain.Web{WebInteraction: &domain.WebInteraction{Name: name, Type: kind, LinkClicks: domain.Measure{Value: clicks}}},
	}
}

// PageView records a navigation to page.
func (t *Tracker) PageView(sess *session.Session, page string) (domain.PageContext, error) {
	pageType, ok := pageTypes[page]
	if !ok {
		return domain.PageContext{}, fmt.Errorf("%w: %s", ErrUnknownPage, page)
	}
	return t.pageView(sess, page, pageType), nil
}

func (t *Tracker) pageView(sess *session.Session, page, pageType string) domain.PageContext {
	pc := t.page(sess, t.pageName(page), pageType, "")

	overrides := &domain.Overrides{
		Web: &domain.Web{WebPageDetails: &domain.WebPageDetails{
			Name:      pc.PageName,
			URL:       pc.URL,
			PageViews: domain.Measure{Value: 1},
		}},
	}
	switch page {
	case PageCart, PageCheckout, PagePayment:
		overrides.Commerce = &domain.Commerce{Order: &domain.Order{CurrencyCode: t.site.Currency}}
	}

	t.emitter.Emit(sess, domain.EventPageView, domain.EventTypePageView, domain.Body{"page": pc}, overrides)
	return pc
}

// CategoryView opens the listing page of category.
func (t *Tracker) CategoryView(ctx context.Context, sess *session.Session, category string) (CategoryListing, error) {
	products, err := t.catalog.Category(ctx, category)
	if err != nil {
		return CategoryListing{}, err
	}
	t.pageView(sess, PagePLP, domain.PageTypeCategory)

	records := builders.ProductList(t.site, products)
	items := make([]domain.ProductListItem, len(products))
	for i, p := range products {
		items[i] = builders.ListItem(t.site, p, 1)
	}

	t.emitter.Emit(sess, domain.EventCategoryView, domain.EventTypeProductListView, domain.Body{
		"page":     t.page(sess, builders.CategoryPageName(t.site, category), domain.PageTypeCategory, category),
		"category": map[string]any{"name": category, "id": catalog.CategorySlug(category)},
		"products": records,
	}, &domain.Overrides{
		Commerce: &domain.Commerce{ProductListViews: domain.One(), ProductListItems: items},
	})

	return CategoryListing{Category: category, Products: records}, nil
}

// ProductView opens the detail page of productID.
func (t *Tracker) ProductView(ctx context.Context, sess *session.Session, productID string) (domain.ProductRecord, error) {
	p, err := t.catalog.Product(ctx, productID)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	t.pageView(sess, PagePDP, domain.PageTypeProduct)

	record := builders.Product(t.site, *p, 1, 1)
	t.emitter.Emit(sess, domain.EventProductView, domain.EventTypeProductView, domain.Body{
		"page":    t.page(sess, t.pageName(PagePDP, p.ID), domain.PageTypeProduct, p.Category),
		"product": record,
	}, &domain.Overrides{
		Commerce: &domain.Commerce{
			ProductViews:     domain.One(),
			ProductListItems: []domain.ProductListItem{builders.ListItem(t.site, *p, 1)},
		},
	})
	return record, nil
}

// AddToCart adds quantity units of productID. The cart is updated before the event is built.
func (t *Tracker) AddToCart(ctx context.Context, sess *session.Session, productID string, quantity int) (domain.CartSnapshot, error) {
	p, err := t.catalog.Product(ctx, productID)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	if quantity < 1 {
		quantity = 1
	}
	sess.AddItem(*p, quantity)
	cart := builders.Cart(t.site, sess)

	t.emitter.Emit(sess, domain.EventCartAdd, domain.EventTypeProductListAdd, domain.Body{
		"page":    t.page(sess, t.pageName(PagePDP, p.ID), domain.PageTypeProduct, p.Category),
		"product": builders.Product(t.site, *p, quantity, 1),
		"cart":    cart,
	}, &domain.Overrides{
		Commerce: &domain.Commerce{
			ProductListAdds:  domain.One(),
			ProductListItems: []domain.ProductListItem{builders.ListItem(t.site, *p, quantity)},
		},
	})
	return cart, nil
}

// RemoveFromCart drops productID from the cart. The event describes the cart before removal.
func (t *Tracker) RemoveFromCart(sess *session.Session, productID string) (domain.CartSnapshot, error) {
	item, ok := sess.Item(productID)
	if !ok {
		return domain.CartSnapshot{}, ErrNotInCart
	}

	t.emitter.Emit(sess, domain.EventCartRemove, domain.EventTypeProductListRem, domain.Body{
		"page":    t.page(sess, t.pageName(PageCart), domain.PageTypeCart, ""),
		"product": builders.Product(t.site, item.Product, item.Quantity, 1),
		"cart":    builders.Cart(t.site, sess),
	}, &domain.Overrides{
		Commerce: &domain.Commerce{
			ProductListRemovals: domain.One(),
			ProductListItems:    []domain.ProductListItem{{SKU: item.Product.ID, Name: item.Product.Name, Quantity: item.Quantity}},
		},
	})

	sess.RemoveItem(productID)
	return builders.Cart(t.site, sess), nil
}

// CategoryTabClick switches the homepage featured category and returns its featured products.
func (t *Tracker) CategoryTabClick(ctx context.Context, sess *session.Session, category string) ([]domain.ProductRecord, error) {
	products, err := t.catalog.Category(ctx, category)
	if err != nil {
		return nil, err
	}

	t.emitter.Emit(sess, domain.EventCategoryTabClick, domain.EventTypeLinkClick, domain.Body{
		"page":      t.page(sess, t.pageName(PageHome), domain.PageTypeHome, ""),
		"component": "category-switcher",
		"category":  category,
	}, interaction("category-tab:"+category, domain.InteractionClick, 1))

	if len(products) > featuredCount {
		products = products[:featuredCount]
	}
	return builders.ProductList(t.site, products), nil
}

// SortProducts re-orders the listing of category.
func (t *Tracker) SortProducts(ctx context.Context, sess *session.Session, category, sortBy string) (CategoryListing, error) {
	products, err := t.catalog.Category(ctx, category)
	if err != nil {
		return CategoryListing{}, err
	}

	t.emitter.Emit(sess, domain.EventPLPSort, domain.EventTypeLinkClick, domain.Body{
		"page":      t.page(sess, builders.CategoryPageName(t.site, category), domain.PageTypeCategory, category),
		"component": "sort-selector",
		"sortBy":    sortBy,
		"category":  category,
	}, interaction("plp-sort:"+sortBy, domain.InteractionOther, 1))

	return CategoryListing{Category: category, Products: builders.ProductList(t.site, catalog.Sort(products, sortBy))}, nil
}

func (t *Tracker) SelectDelivery(sess *session.Session, method string) domain.CartSnapshot {
	cart := builders.Cart(t.site, sess)
	t.emitter.Emit(sess, domain.EventDeliverySelect, domain.EventTypeLinkClick, domain.Body{
		"page":           t.page(sess, t.pageName(PageCheckout), domain.PageTypeCheckout, ""),
		"component":      "delivery-selector",
		"deliveryMethod": method,
		"cart":           cart,
	}, interaction("delivery:"+method, domain.InteractionClick, 1))
	return cart
}

func (t *Tracker) SelectPayment(sess *session.Session, method string) domain.CartSnapshot {
	cart := builders.Cart(t.site, sess)
	t.emitter.Emit(sess, domain.EventPaymentSelect, domain.EventTypeLinkClick, domain.Body{
		"page":          t.page(sess, t.pageName(PagePayment), domain.PageTypePayment, ""),
		"component":     "payment-method-selector",
		"paymentMethod": method,
		"cart":          cart,
	}, interaction("payment:"+method, domain.InteractionClick, 1))
	return cart
}

func (t *Tracker) LoginTabSwitch(sess *session.Session, tab string) {
	t.emitter.Emit(sess, domain.EventLoginTabSwitch, domain.EventTypeLinkClick, domain.Body{
		"page":      t.loginPage(sess),
		"component": "login-tabs",
		"tab":       tab,
	}, interaction("login-tab:"+tab, domain.InteractionClick, 1))
}

func (t *Tracker) loginPage(sess *session.Session) domain.PageContext {
	return t.page(sess, t.pageName(PageLogin), domain.PageTypeLogin, "")
}

// SignIn records the attempt, delegates to the identity store and records a failure.
// Incomplete forms are rejected before anything is emitted.
func (t *Tracker) SignIn(ctx context.Context, sess *session.Session, creds identity.Credentials) (domain.Identity, error) {
	if err := t.store.ValidateCredentials(creds); err != nil {
		return sess.Identity(), err
	}

	emailHash := t.fingerprinter.Fingerprint(strings.TrimSpace(creds.Email))
	t.emitter.Emit(sess, domain.EventLoginAttempt, domain.EventTypeLinkClick, domain.Body{
		"page":      t.loginPage(sess),
		"method":    "email-password",
		"emailHash": emailHash,
	}, interaction("login:attempt", domain.InteractionClick, 1))

	signedIn, err := t.store.SignIn(ctx, sess, creds)
	if err != nil {
		if reason := failureReason(err); reason != "" {
			t.emitter.Emit(sess, domain.EventLoginFailed, domain.EventTypeLinkClick, domain.Body{
				"page":      t.loginPage(sess),
				"method":    "email-password",
				"reason":    reason,
				"emailHash": emailHash,
			}, interaction("login:failed", domain.InteractionOther, 0))
		}
		return signedIn, err
	}
	return signedIn, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return "invalid-credentials"
	case errors.Is(err, identity.ErrIdentityConflict):
		return "identity-conflict"
	}
	return ""
}

// Register creates the account; account:created is recorded before the identity stitch.
func (t *Tracker) Register(ctx context.Context, sess *session.Session, profile identity.Profile) (domain.Identity, error) {
	return t.store.Register(ctx, sess, profile, func(user domain.AuthenticatedUser) {
		var phoneHash any
		if user.PhoneHash != "" {
			phoneHash = user.PhoneHash
		}
		t.emitter.Emit(sess, domain.EventAccountCreated, domain.EventTypeLinkClick, domain.Body{
			"page":           t.loginPage(sess),
			"method":         "email-registration",
			"merchantUserID": user.MerchantUserID,
			"emailHash":      user.EmailHash,
			"phoneHash":      phoneHash,
			"loyaltyTier":    user.LoyaltyTier,
		}, interaction(domain.EventAccountCreated, domain.InteractionClick, 1))
	})
}

// GuestCheckout flags the session as a guest and moves on to checkout.
func (t *Tracker) GuestCheckout(ctx context.Context, sess *session.Session) (domain.Identity, error) {
	guest, err := t.store.ContinueAsGuest(ctx, sess)
	if err != nil {
		return guest, err
	}

	t.emitter.Emit(sess, domain.EventGuestCheckout, domain.EventTypeLinkClick, domain.Body{
		"page":      t.loginPage(sess),
		"guestID":   guest.Guest.TransientID,
		"cartTotal": domain.Subtotal(sess.Items()),
	}, interaction(domain.EventGuestCheckout, domain.InteractionClick, 1))

	t.pageView(sess, PageCheckout, domain.PageTypeCheckout)
	return guest, nil
}

func (t *Tracker) CheckoutStep(sess *session.Session, step int, stepName string) domain.CartSnapshot {
	cart := builders.Cart(t.site, sess)
	t.emitter.Emit(sess, domain.EventCheckoutStep, domain.EventTypeCheckout, domain.Body{
		"page":     t.page(sess, t.pageName(PageCheckout), domain.PageTypeCheckout, ""),
		"step":     step,
		"stepName": stepName,
		"cart":     cart,
	}, &domain.Overrides{
		Commerce: &domain.Commerce{
			Checkouts: domain.One(),
			Order:     &domain.Order{CurrencyCode: t.site.Currency, PriceTotal: cart.Total},
		},
	})
	return cart
}

// PlaceOrder records the purchase, empties the cart and shows the confirmation page.
func (t *Tracker) PlaceOrder(sess *session.Session, customerName string) (OrderReceipt, error) {
	items := sess.Items()
	if len(items) == 0 {
		return OrderReceipt{}, ErrEmptyCart
	}
	if strings.TrimSpace(customerName) == "" {
		customerName = "Friend"
	}

	cart := builders.Cart(t.site, sess)
	receipt := OrderReceipt{
		OrderID:      t.orderIDPrefix + strconv.Itoa(t.now().Year()) + "-" + strconv.Itoa(1000+t.randN(9000)),
		CustomerName: customerName,
		Subtotal:     cart.Subtotal,
		Tax:          cart.Tax,
		Total:        cart.Total,
		Currency:     cart.Currency,
		Products:     cart.Products,
	}

	t.emitter.Emit(sess, domain.EventOrderPlaced, domain.EventTypePurchase, domain.Body{
		"page":  t.page(sess, t.pageName(PageThankYou), domain.PageTypeOrder, ""),
		"order": receipt,
		"cart":  cart,
	}, &domain.Overrides{
		Commerce: &domain.Commerce{
			Purchases: domain.One(),
			Order: &domain.Order{
				PurchaseID:   receipt.OrderID,
				PriceTotal:   cart.Total,
				TaxAmount:    cart.Tax,
				CurrencyCode: t.site.Currency,
			},
			ProductListItems: builders.CartListItems(t.site, items),
		},
	})

	sess.ClearCart()
	t.pageView(sess, PageThankYou, domain.PageTypeOrder)
	return receipt, nil
}
