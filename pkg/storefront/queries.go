package storefront

// Operation names double as cache key namespaces.
const (
	opRecommendedProducts  = "RecommendedProducts"
	opRecommendedBlogPosts = "RecommendedBlogPosts"
)

const recommendedProductsQuery = `
fragment RecommendedProduct on Product {
  id
  title
  handle
  priceRange {
    minVariantPrice {
      amount
      currencyCode
    }
  }
  images(first: 1) {
    nodes {
      id
      url
      altText
      width
      height
    }
  }
}
query RecommendedProducts($first: Int!, $country: CountryCode, $language: LanguageCode)
  @inContext(country: $country, language: $language) {
  products(first: $first, sortKey: UPDATED_AT, reverse: true) {
    nodes {
      ...RecommendedProduct
    }
  }
}
`

const recommendedBlogPostsQuery = `
query RecommendedBlogPosts($handle: String!, $first: Int!, $country: CountryCode, $language: LanguageCode)
  @inContext(country: $country, language: $language) {
  blog(handle: $handle) {
    id
    articles(first: $first, sortKey: PUBLISHED_AT, reverse: true) {
      nodes {
        id
        title
        image {
          id
          url
          altText
        }
        publishedAt
        excerpt
      }
    }
  }
}
`

type productsData struct {
	Products struct {
		Nodes []productNode `json:"nodes"`
	} `json:"products"`
}

type productNode struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Handle     string `json:"handle"`
	PriceRange struct {
		MinVariantPrice Money `json:"minVariantPrice"`
	} `json:"priceRange"`
	Images struct {
		Nodes []Image `json:"nodes"`
	} `json:"images"`
}

func (n productNode) product() Product {
	return Product{
		ID:     n.ID,
		Title:  n.Title,
		Handle: n.Handle,
		Price:  n.PriceRange.MinVariantPrice,
		Images: n.Images.Nodes,
	}
}

type blogData struct {
	Blog *struct {
		ID       string `json:"id"`
		Articles struct {
			Nodes []Article `json:"nodes"`
		} `json:"articles"`
	} `json:"blog"`
}
