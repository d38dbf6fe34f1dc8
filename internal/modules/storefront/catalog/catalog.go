// Package catalog supplies the products the storefront shows. The catalog is an external
// collaborator of the instrumentation core: events only read from it.
package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// Provider is implemented by the static and SQL catalogs.
type Provider interface {
	Categories(ctx context.Context) ([]string, error)
	Category(ctx context.Context, name string) ([]domain.Product, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
}

// Sort orders used by the listing page.
const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"
	SortNewest    = "newest"
)

// Sort returns a sorted copy of products. Unknown orders keep the catalog order.
func Sort(products []domain.Product, by string) []domain.Product {
	sorted := slices.Clone(products)
	switch by {
	case SortPriceAsc:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int { return cmpInt64(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int { return cmpInt64(b.Price, a.Price) })
	case SortRating:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			switch {
			case a.Rating > b.Rating:
				return -1
			case a.Rating < b.Rating:
				return 1
			}
			return 0
		})
	case SortNewest:
		slices.Reverse(sorted)
	}
	return sorted
}

// CategorySlug is the identifier form of a category name, e.g. "T-Shirts" -> "t-shirts".
func CategorySlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
