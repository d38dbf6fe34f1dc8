package catalog

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
)

// DefaultSeed makes the static catalog identical across restarts.
const DefaultSeed = 2025

var categories = []string{"Shirts", "T-Shirts", "Pants", "Shoes", "Shorts", "Joggers", "Accessories"}

var palette = []domain.Color{
	{Name: "Jet Black", Hex: "#1a1a1a"},
	{Name: "Pure White", Hex: "#f5f5f5"},
	{Name: "Slate Grey", Hex: "#4a5568"},
	{Name: "Mocha Brown", Hex: "#8B4513"},
	{Name: "Forest Green", Hex: "#2d5a27"},
	{Name: "Rust Red", Hex: "#c0392b"},
	{Name: "Camel", Hex: "#c8a96e"},
	{Name: "Navy", Hex: "#1e3a5f"},
}

var productNames = map[string][]string{
	"Shirts":      {"Oxford Classic", "Linen Breeze", "Chambray Essential", "Poplin Slim", "Flannel Weekend", "Herringbone Formal", "Twill Daily", "Broadcloth Crisp", "Dobby Luxe", "Mandarin Collar"},
	"T-Shirts":    {"Essential Crew", "Heavyweight Tee", "Slub Cotton Tee", "Longline Tee", "V-Neck Essential", "Pocket Tee", "Oversized Comfort", "Half-Sleeve Modal", "Ribbed Stretch", "Tie-Dye Special"},
	"Pants":       {"Slim Chino", "Cargo Utility", "Linen Wide-Leg", "Tapered Trouser", "Relaxed Fit", "Tech Jogger Pant", "Pleated Classic", "Drawstring Casual", "Pinstripe Formal", "Cropped Ankle"},
	"Shoes":       {"Canvas Low-Top", "Leather Derby", "Suede Loafer", "Running Ace", "Trail Hiker", "Chelsea Boot", "Slip-On Espadrille", "High-Top Sneaker", "Boat Shoe", "Oxford Brogues"},
	"Shorts":      {"Chino Short", "Athletic 5\"", "Linen Drawstring", "Cargo Pocket", "Denim Cut-Off", "Swim Short", "Pleated Bermuda", "Running Split", "Board Short", "Tailored Short"},
	"Joggers":     {"Tech Fleece", "French Terry", "Tapered Slim", "Wide-Leg Cozy", "Zip Pocket", "Lightweight Run", "Ribbed Cuff", "Cotton Modal", "Double Knit", "Travel Jogger"},
	"Accessories": {"Canvas Tote", "Leather Belt", "Knit Beanie", "Wool Scarf", "Sunglasses Case", "Passport Holder", "Card Wallet", "Watch Strap", "Shoe Bag", "Cap Essential"},
}

// Static is an in-memory catalog of seven categories with ten products each.
type Static struct {
	byCategory map[string][]domain.Product
	byID       map[string]domain.Product
}

// NewStatic generates the catalog from seed.
func NewStatic(seed uint64) *Static {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s := &Static{
		byCategory: make(map[string][]domain.Product, len(categories)),
		byID:       make(map[string]domain.Product),
	}
	for _, cat := range categories {
		for i, name := range productNames[cat] {
			p := generate(r, cat, i, name)
			s.byCategory[cat] = append(s.byCategory[cat], p)
			s.byID[p.ID] = p
		}
	}
	return s
}

func generate(r *rand.Rand, category string, index int, name string) domain.Product {
	price := int64(math.Round((599+r.Float64()*2800)/100) * 100)

	var original int64
	if r.Float64() > 0.5 {
		original = int64(math.Round(float64(price) * (1.1 + r.Float64()*0.3)))
	}

	colors := make([]domain.Color, len(palette))
	copy(colors, palette)
	r.Shuffle(len(colors), func(i, j int) { colors[i], colors[j] = colors[j], colors[i] })
	colors = colors[:2+r.IntN(4)]

	var badge string
	switch index {
	case 0:
		badge = "New"
	case 1:
		badge = "Bestseller"
	}

	return domain.Product{
		ID:            fmt.Sprintf("%s-%d", strings.ReplaceAll(category, " ", "-"), index),
		Category:      category,
		Name:          name,
		Price:         price,
		OriginalPrice: original,
		Colors:        colors,
		Rating:        math.Round((3.8+r.Float64()*1.2)*10) / 10,
		Reviews:       40 + r.IntN(300),
		Badge:         badge,
		Description:   fmt.Sprintf("Premium quality %s crafted with care. Perfect for everyday wear and special occasions alike.", strings.ToLower(name)),
	}
}

func (s *Static) Categories(_ context.Context) ([]string, error) {
	out := make([]string, len(categories))
	copy(out, categories)
	return out, nil
}

func (s *Static) Category(_ context.Context, name string) ([]domain.Product, error) {
	products, ok := s.byCategory[name]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out, nil
}

func (s *Static) Product(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}
