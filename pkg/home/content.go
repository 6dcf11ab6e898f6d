// Package home composes the storefront homepage: static marketing sections
// plus two deferred carousels (best sellers and tips) fed by a Source.
package home

// Link is a labelled call to action.
type Link struct {
	Label string `toml:"label"`
	Href  string `toml:"href"`
}

// Hero is the banner at the top of the homepage.
type Hero struct {
	Title           string `toml:"title"`
	Subtitle        string `toml:"subtitle"`
	CTA             Link   `toml:"cta"`
	BackgroundImage string `toml:"background_image"`
}

// Social is the "Get Social & Share" section.
type Social struct {
	Title    string   `toml:"title"`
	Body     []string `toml:"body"`
	Hashtag  string   `toml:"hashtag"`
	Links    []Link   `toml:"links"`
	Gallery  []string `toml:"gallery"`
	Featured string   `toml:"featured"` // single image shown in the mobile layout
}

// Story is the "Why Our Formula" brand section.
type Story struct {
	Title string   `toml:"title"`
	Body  []string `toml:"body"`
	Image string   `toml:"image"`
	CTA   Link     `toml:"cta"`
}

// Content is the static, non-fetched part of the homepage.
type Content struct {
	Title         string `toml:"title"`
	Hero          Hero   `toml:"hero"`
	ProductsTitle string `toml:"products_title"`
	TipsTitle     string `toml:"tips_title"`
	TrustTitle    string `toml:"trust_title"`
	Social        Social `toml:"social"`
	Story         Story  `toml:"story"`
}

const placeholderTile = "https://placehold.co/400x400"

// DefaultContent returns the stock JENNYCHEM homepage copy.
func DefaultContent() Content {
	gallery := make([]string, 8)
	for i := range gallery {
		gallery[i] = placeholderTile
	}
	return Content{
		Title: "JENNYCHEM | Home",
		Hero: Hero{
			Title: "Outdoor Surface Cleaners",
			Subtitle: "Giving your vehicle a showroom look without damaging or effecting " +
				"its paintwork, while keeping it's gloss finish.",
			CTA:             Link{Label: "Shop Collection", Href: "/collections/all"},
			BackgroundImage: "https://cdn.shopify.com/s/files/1/0032/5474/7185/files/washer_man.png?v=1717245774",
		},
		ProductsTitle: "Our Best Sellers",
		TipsTitle:     "Tips & Tricks When It Comes To Cleaning",
		TrustTitle:    "Rated Excellent on Trustpilot",
		Social: Social{
			Title: "Get Social & Share!",
			Body: []string{
				"Follow us on social media to see our products in action, followed by the final result. " +
					"Also to see what new products we currently have in development, along with limited time offers.",
				"We also like to see what you can achieve by using our products. " +
					"Use the hashtag #jennychem when posting to show your results!",
			},
			Hashtag: "#jennychem",
			Links: []Link{
				{Label: "Facebook", Href: "https://www.facebook.com/"},
				{Label: "Youtube", Href: "https://www.youtube.com/"},
				{Label: "Instagram", Href: "https://www.instagram.com/"},
				{Label: "Tiktok", Href: "https://www.tiktok.com/"},
			},
			Gallery:  gallery,
			Featured: placeholderTile,
		},
		Story: Story{
			Title: "Why Our Formula?",
			Body: []string{
				"Jennychem is one of the UK's leading cleaning products suppliers for both businesses and consumers. " +
					"We are a family oriented business that has been in operation for more than 25 years.",
				"Providing a vast range of products, including vehicle care and kitchen sanitation. " +
					"All our products are formulated and then manufactured on site within the UK.",
			},
			Image: "https://placehold.co/900x500",
			CTA:   Link{Label: "About Us", Href: "/pages/about"},
		},
	}
}
