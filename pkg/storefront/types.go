package storefront

import (
	"fmt"
	"strconv"
	"time"
)

// Money is an amount in a currency as returned by the Storefront API.
// Amount is a decimal string, e.g. "12.0".
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
}

// String formats the amount with two decimals and a currency symbol when one
// is known ("£12.00"), falling back to a code suffix ("12.00 CAD").
func (m Money) String() string {
	if m.Amount == "" {
		return ""
	}
	amount := m.Amount
	if f, err := strconv.ParseFloat(m.Amount, 64); err == nil {
		amount = fmt.Sprintf("%.2f", f)
	}
	if sym, ok := currencySymbols[m.CurrencyCode]; ok {
		return sym + amount
	}
	if m.CurrencyCode == "" {
		return amount
	}
	return amount + " " + m.CurrencyCode
}

// Image is a product or article image hosted on the Shopify CDN.
type Image struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Product is a product-like record shown in the best sellers carousel.
type Product struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Handle string  `json:"handle"`
	Price  Money   `json:"price"`
	Images []Image `json:"images"`
}

// FeaturedImage returns the first image of the product.
func (p Product) FeaturedImage() (Image, bool) {
	if len(p.Images) == 0 {
		return Image{}, false
	}
	return p.Images[0], true
}

// Article is an article-like record shown in the tips carousel.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Image       *Image    `json:"image,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Excerpt     string    `json:"excerpt,omitempty"`
}
