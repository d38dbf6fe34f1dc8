package domain

// XDM is the typed document submitted to the remote telemetry sink (channel 2).
type XDM struct {
	EventType   EventType          `json:"eventType"`
	Timestamp   string             `json:"timestamp"`
	Web         *Web               `json:"web,omitempty"`
	Commerce    *Commerce          `json:"commerce,omitempty"`
	Device      *Device            `json:"device,omitempty"`
	IdentityMap IdentityLink       `json:"identityMap,omitempty"`
	Storefront  *StorefrontSection `json:"_storefront,omitempty"`
}

type Web struct {
	WebPageDetails *WebPageDetails `json:"webPageDetails,omitempty"`
	WebReferrer    *WebReferrer    `json:"webReferrer,omitempty"`
	WebInteraction *WebInteraction `json:"webInteraction,omitempty"`
}

type WebPageDetails struct {
	Name      string  `json:"name"`
	URL       string  `json:"URL"`
	PageViews Measure `json:"pageViews"`
}

type WebReferrer struct {
	URL string `json:"URL"`
}

// Interaction types.
const (
	InteractionClick = "click"
	InteractionOther = "other"
)

type WebInteraction struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	LinkClicks Measure `json:"linkClicks"`
}

// Measure is a counted metric.
type Measure struct {
	Value int `json:"value"`
}

// One is the measure attached to the metric an event increments.
func One() *Measure { return &Measure{Value: 1} }

type Commerce struct {
	ProductListViews    *Measure          `json:"productListViews,omitempty"`
	ProductViews        *Measure          `json:"productViews,omitempty"`
	ProductListAdds     *Measure          `json:"productListAdds,omitempty"`
	ProductListRemovals *Measure          `json:"productListRemovals,omitempty"`
	Checkouts           *Measure          `json:"checkouts,omitempty"`
	Purchases           *Measure          `json:"purchases,omitempty"`
	Order               *Order            `json:"order,omitempty"`
	ProductListItems    []ProductListItem `json:"productListItems,omitempty"`
}

type Order struct {
	PurchaseID   string `json:"purchaseID,omitempty"`
	PriceTotal   int64  `json:"priceTotal,omitempty"`
	TaxAmount    int64  `json:"taxAmount,omitempty"`
	CurrencyCode string `json:"currencyCode"`
}

type ProductListItem struct {
	SKU          string `json:"SKU"`
	Name         string `json:"name"`
	PriceTotal   int64  `json:"priceTotal,omitempty"`
	CurrencyCode string `json:"currencyCode,omitempty"`
	Quantity     int    `json:"quantity"`
}

// Device types.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
)

type Device struct {
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	Type         string `json:"type"`
}

// StorefrontSection is the tenant-specific XDM field group.
type StorefrontSection struct {
	User *StorefrontUser `json:"user,omitempty"`
}

type StorefrontUser struct {
	MerchantUserID string `json:"merchantUserID"`
	LoyaltyTier    string `json:"loyaltyTier"`
	IsGuest        bool   `json:"isGuest"`
}

// Overrides are the event-specific sections merged over the base XDM template.
// A set section replaces the base section as a whole.
type Overrides struct {
	Web      *Web
	Commerce *Commerce
}

// Apply merges o into x.
func (o *Overrides) Apply(x *XDM) {
	if o == nil {
		return
	}
	if o.Web != nil {
		x.Web = o.Web
	}
	if o.Commerce != nil {
		x.Commerce = o.Commerce
	}
}

// Submission is a single document handed to a remote sink.
type Submission struct {
	XDM  XDM            `json:"xdm"`
	Data map[string]any `json:"data,omitempty"`
}
