package cache

// ScopedKeyer wraps a Keyer with a prefix so that several shops can share one
// backend without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "shop:jennychem.myshopify.com:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// QueryKey generates a prefixed key for GraphQL response caching.
func (k *ScopedKeyer) QueryKey(operation string, vars map[string]any) string {
	return k.prefix + k.inner.QueryKey(operation, vars)
}
