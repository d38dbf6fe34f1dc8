// Package builders assembles the canonical page, product and cart records carried by events.
package builders

import (
	"strings"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/session"
)

const defaultServer = "localhost"

// Page returns the page context for a view. It reads only the ambient environment.
func Page(site domain.Site, env domain.Environment, name, pageType, category string) domain.PageContext {
	server := env.Host
	if server == "" {
		server = defaultServer
	}
	return domain.PageContext{
		PageName:    name,
		PageType:    pageType,
		Category:    category,
		SiteSection: site.Section,
		Language:    site.Language,
		Currency:    site.Currency,
		SiteName:    site.Name,
		Server:      server,
		URL:         env.URL,
		Referrer:    env.Referrer,
	}
}

// Product projects a catalog product into a data-layer record.
func Product(site domain.Site, p domain.Product, quantity, position int) domain.ProductRecord {
	if quantity < 1 {
		quantity = 1
	}
	if position < 0 {
		position = 0
	}
	original := p.OriginalPrice
	if original == 0 {
		original = p.Price
	}
	var color string
	if len(p.Colors) > 0 {
		color = p.Colors[0].Name
	}
	return domain.ProductRecord{
		ProductID:     p.ID,
		ProductName:   p.Name,
		Category:      p.Category,
		Price:         p.Price,
		OriginalPrice: original,
		Currency:      site.Currency,
		Brand:         site.Brand,
		Color:         color,
		Rating:        p.Rating,
		ReviewCount:   p.Reviews,
		Quantity:      quantity,
		Position:      position,
		InStock:       true,
	}
}

// ProductList projects products with 1-based positions.
func ProductList(site domain.Site, products []domain.Product) []domain.ProductRecord {
	records := make([]domain.ProductRecord, len(products))
	for i, p := range products {
		records[i] = Product(site, p, 1, i+1)
	}
	return records
}

// Cart snapshots the session's cart. The first call for a session assigns its cart ID.
func Cart(site domain.Site, sess *session.Session) domain.CartSnapshot {
	items := sess.Items()

	subtotal := domain.Subtotal(items)
	tax := domain.Tax(subtotal)

	totalItems := 0
	products := make([]domain.ProductRecord, len(items))
	for i, item := range items {
		totalItems += item.Quantity
		products[i] = Product(site, item.Product, item.Quantity, i+1)
	}

	return domain.CartSnapshot{
		CartID:     sess.CartID(),
		TotalItems: totalItems,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      subtotal + tax,
		Currency:   site.Currency,
		Products:   products,
	}
}

// ListItem builds the commerce.productListItems entry for a product line.
func ListItem(site domain.Site, p domain.Product, quantity int) domain.ProductListItem {
	return domain.ProductListItem{
		SKU:          p.ID,
		Name:         p.Name,
		PriceTotal:   p.Price * int64(quantity),
		CurrencyCode: site.Currency,
		Quantity:     quantity,
	}
}

// CartListItems builds the productListItems for every cart line.
func CartListItems(site domain.Site, items []domain.CartItem) []domain.ProductListItem {
	out := make([]domain.ProductListItem, len(items))
	for i, item := range items {
		out[i] = ListItem(site, item.Product, item.Quantity)
	}
	return out
}

// PageName joins the site prefix and parts with ':'.
func PageName(site domain.Site, parts ...string) string {
	name := site.PagePrefix
	for _, p := range parts {
		name += ":" + p
	}
	return name
}

// CategoryPageName returns the listing page name for category.
func CategoryPageName(site domain.Site, category string) string {
	return PageName(site, "plp", strings.ToLower(category))
}
