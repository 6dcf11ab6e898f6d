// Package storefront is a client for the Shopify Storefront GraphQL API.
//
// # Overview
//
// The client fetches the two lists the homepage needs:
//
//   - [Client.RecommendedProducts]: the most recently updated products
//   - [Client.RecommendedArticles]: the newest articles of a blog
//
// # Client Pattern
//
//	client, err := storefront.NewClient(storefront.Options{
//	    Shop:  "jennychem.myshopify.com",
//	    Token: os.Getenv("STOREFRONT_TOKEN"),
//	    Cache: c,
//	})
//	products, err := client.RecommendedProducts(ctx, false) // false = use cache
//
// The client handles:
//   - GraphQL requests with retry and rate limiting
//   - Response caching through [cache.Cache] with a configurable TTL
//   - Mapping HTTP and GraphQL failures onto [errors.Code] values
//
// [cache.Cache]: github.com/jennychem/storefront/pkg/cache.Cache
// [errors.Code]: github.com/jennychem/storefront/pkg/errors.Code
package storefront
