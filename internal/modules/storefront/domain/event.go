package domain

import "time"

// EventType is the telemetry classification of an event on the remote channel.
type EventType string

const (
	EventTypePageView        EventType = "web.webpagedetails.pageViews"
	EventTypeLinkClick       EventType = "web.webinteraction.linkClicks"
	EventTypeProductListView EventType = "commerce.productListViews"
	EventTypeProductView     EventType = "commerce.productViews"
	EventTypeProductListAdd  EventType = "commerce.productListAdds"
	EventTypeProductListRem  EventType = "commerce.productListRemovals"
	EventTypeCheckout        EventType = "commerce.checkouts"
	EventTypePurchase        EventType = "commerce.purchases"
	EventTypeLogin           EventType = "user.login"
)

// Data-layer event names.
const (
	EventPageView         = "page:view"
	EventCategoryView     = "category:view"
	EventProductView      = "product:view"
	EventCartAdd          = "cart:add"
	EventCartRemove       = "cart:remove"
	EventCategoryTabClick = "ui:category-tab-click"
	EventPLPSort          = "plp:sort"
	EventDeliverySelect   = "checkout:delivery-method-select"
	EventPaymentSelect    = "checkout:payment-method-select"
	EventLoginTabSwitch   = "login:tab-switch"
	EventLoginAttempt     = "login:attempt"
	EventLoginFailed      = "login:failed"
	EventAccountCreated   = "account:created"
	EventGuestCheckout    = "checkout:guest"
	EventCheckoutStep     = "checkout:step"
	EventOrderPlaced      = "order:placed"
	EventUserLogin        = "user:login"
)

// Body is the free-form event payload. The "page" key, when present, holds a PageContext.
type Body map[string]any

// Page returns the page context carried by the body.
func (b Body) Page() (PageContext, bool) {
	p, ok := b["page"].(PageContext)
	return p, ok
}

// UserSnapshot is the authenticated-user context pushed with the login entry.
type UserSnapshot struct {
	MerchantUserID  string `json:"merchantUserID"`
	EmailHash       string `json:"emailHash,omitempty"`
	PhoneHash       string `json:"phoneHash,omitempty"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	LoyaltyTier     string `json:"loyaltyTier"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// DataLayerEntry is one record of the observable event log (channel 1).
type DataLayerEntry struct {
	ID          string        `json:"id"`
	Event       string        `json:"event"`
	EventInfo   Body          `json:"eventInfo"`
	PageContext PageSummary   `json:"pageContext"`
	User        *UserSnapshot `json:"user,omitempty"`
	Page        *PageContext  `json:"page,omitempty"`
	SessionID   string        `json:"sessionId"`
	PushedAt    time.Time     `json:"pushedAt"`
}
