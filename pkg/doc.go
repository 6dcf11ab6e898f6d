// Package pkg holds the libraries behind the JENNYCHEM storefront homepage.
//
// # Overview
//
// The homepage shows static brand copy plus two sections that load from the
// Shopify Storefront API: best sellers and cleaning tips. Each section loads
// on its own and renders a fallback until it settles. The packages are:
//
//  1. [carousel] - windowed, wrap-around carousel pagination
//  2. [deferred] - background loads with pending/ready/failed states
//  3. [viewport] - mobile/desktop classification by width
//  4. [storefront] - Storefront API client and record types
//  5. [home] - homepage content, section loading and card view models
//  6. [cache] - response cache backends (file, redis, mongo, none)
//  7. [errors], [httputil], [observability], [buildinfo] - shared plumbing
//
// # Data Flow
//
//	Storefront API (GraphQL)
//	         ↓
//	    [storefront] client (cache, retry)
//	         ↓
//	    [home] page (one [deferred] task per section)
//	         ↓
//	    [carousel] window sized by [viewport] mode
//	         ↓
//	    terminal UI or HTML page
//
// The front ends live in internal/tui and internal/web; cmd/storefront wires
// them behind a cobra CLI.
//
// [carousel]: github.com/jennychem/storefront/pkg/carousel
// [deferred]: github.com/jennychem/storefront/pkg/deferred
// [viewport]: github.com/jennychem/storefront/pkg/viewport
// [storefront]: github.com/jennychem/storefront/pkg/storefront
// [home]: github.com/jennychem/storefront/pkg/home
// [cache]: github.com/jennychem/storefront/pkg/cache
// [errors]: github.com/jennychem/storefront/pkg/errors
// [httputil]: github.com/jennychem/storefront/pkg/httputil
// [observability]: github.com/jennychem/storefront/pkg/observability
// [buildinfo]: github.com/jennychem/storefront/pkg/buildinfo
package pkg
