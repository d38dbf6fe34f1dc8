// Package domain contains the data-layer and telemetry models for the storefront module.
package domain

// Page types understood by the data-layer rules.
const (
	PageTypeHome     = "homepage"
	PageTypeCategory = "category"
	PageTypeProduct  = "product"
	PageTypeCart     = "cart"
	PageTypeLogin    = "login"
	PageTypeCheckout = "checkout"
	PageTypePayment  = "payment"
	PageTypeOrder    = "order-confirmation"
)

// Site holds the storefront-wide values stamped on every page and product record.
type Site struct {
	Section  string `json:"siteSection"`
	Language string `json:"language"`
	Currency string `json:"currency"`
	Name     string `json:"siteName"`
	Brand    string `json:"brand"`
	// PagePrefix prefixes every page name, e.g. "duke" yields "duke:cart".
	PagePrefix string `json:"pagePrefix"`
}

// Environment is the ambient browser state reported by the storefront for the current view.
type Environment struct {
	Host         string `json:"host"`
	URL          string `json:"url"`
	Referrer     string `json:"referrer"`
	UserAgent    string `json:"userAgent"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
}

// PageContext is the page snapshot taken for a single navigation.
type PageContext struct {
	PageName    string `json:"pageName"`
	PageType    string `json:"pageType"`
	Category    string `json:"category"`
	SiteSection string `json:"siteSection"`
	Language    string `json:"language"`
	Currency    string `json:"currency"`
	SiteName    string `json:"siteName"`
	Server      string `json:"server"`
	URL         string `json:"url"`
	Referrer    string `json:"referrer"`
}

// PageSummary is the reduced page context attached to every data-layer entry.
type PageSummary struct {
	PageName string `json:"pageName"`
	PageType string `json:"pageType"`
}
