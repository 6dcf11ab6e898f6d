package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxHandleLength mirrors the Shopify admin limit for URL handles.
const maxHandleLength = 255

// handleRegex matches Shopify resource handles: lowercase words joined by hyphens.
var handleRegex = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// ValidateHandle validates a product or blog handle before it is placed in a
// URL or a query. It rejects anything that could be used for path traversal or
// injection.
func ValidateHandle(handle string) error {
	if handle == "" {
		return New(ErrCodeInvalidHandle, "handle cannot be empty")
	}

	if len(handle) > maxHandleLength {
		return New(ErrCodeInvalidHandle, "handle too long (max %d characters)", maxHandleLength)
	}

	for _, r := range handle {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidHandle, "handle contains invalid control characters")
		}
	}

	if !handleRegex.MatchString(handle) {
		return New(ErrCodeInvalidHandle, "invalid handle: %q", handle)
	}

	return nil
}

// shopDomainRegex matches bare host names such as "example.myshopify.com".
var shopDomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)

// ValidateShopDomain validates a shop domain. The domain must be a bare host
// name without scheme, port or path.
func ValidateShopDomain(domain string) error {
	if domain == "" {
		return New(ErrCodeInvalidShop, "shop domain cannot be empty")
	}

	if strings.Contains(domain, "://") {
		return New(ErrCodeInvalidShop, "shop domain must not include a scheme: %q", domain)
	}

	if strings.ContainsAny(domain, "/:?#@ ") {
		return New(ErrCodeInvalidShop, "shop domain must be a bare host name: %q", domain)
	}

	if !shopDomainRegex.MatchString(strings.ToLower(domain)) {
		return New(ErrCodeInvalidShop, "invalid shop domain: %q", domain)
	}

	return nil
}

// apiVersionRegex matches Storefront API versions such as "2024-04".
var apiVersionRegex = regexp.MustCompile(`^\d{4}-(01|04|07|10)$|^unstable$`)

// ValidateAPIVersion validates a Storefront API version string.
func ValidateAPIVersion(version string) error {
	if !apiVersionRegex.MatchString(version) {
		return New(ErrCodeInvalidConfig, "invalid Storefront API version: %q", version)
	}
	return nil
}

// ValidateLink validates an href or image source from the homepage content.
// Absolute http(s) URLs and root-relative storefront paths are accepted;
// other schemes (javascript:, data:) and protocol-relative URLs are not.
func ValidateLink(link string) error {
	if link == "" {
		return New(ErrCodeInvalidInput, "link cannot be empty")
	}

	for _, r := range link {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "link contains whitespace or control characters: %q", link)
		}
	}

	switch {
	case strings.HasPrefix(link, "//"):
		return New(ErrCodeInvalidInput, "protocol-relative link not allowed: %q", link)
	case strings.HasPrefix(link, "/"):
		return nil
	case strings.HasPrefix(link, "https://"), strings.HasPrefix(link, "http://"):
		if len(strings.SplitN(link, "://", 2)[1]) == 0 {
			return New(ErrCodeInvalidInput, "link has no host: %q", link)
		}
		return nil
	}
	return New(ErrCodeInvalidInput, "link must be an http(s) URL or a path starting with /: %q", link)
}
