package domain

// Color is a colour variant of a catalog product.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Product is a catalog entry as supplied by the catalog provider.
// Prices are whole currency units; OriginalPrice is zero when the product is not discounted.
type Product struct {
	ID            string  `json:"id"`
	Category      string  `json:"category"`
	Name          string  `json:"name"`
	Price         int64   `json:"price"`
	OriginalPrice int64   `json:"originalPrice,omitempty"`
	Colors        []Color `json:"colors"`
	Rating        float64 `json:"rating"`
	Reviews       int     `json:"reviews"`
	Badge         string  `json:"badge,omitempty"`
	Description   string  `json:"description"`
}

// ProductRecord is the data-layer projection of a product at the moment it enters an event.
type ProductRecord struct {
	ProductID     string  `json:"productID"`
	ProductName   string  `json:"productName"`
	Category      string  `json:"category"`
	Price         int64   `json:"price"`
	OriginalPrice int64   `json:"originalPrice"`
	Currency      string  `json:"currency"`
	Brand         string  `json:"brand"`
	Color         string  `json:"color"`
	Rating        float64 `json:"rating"`
	ReviewCount   int     `json:"reviewCount"`
	Quantity      int     `json:"quantity"`
	Position      int     `json:"position"`
	InStock       bool    `json:"inStock"`
}
