// Package httputil provides HTTP utilities for the Storefront API client.
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses and GraphQL THROTTLED errors
//
// Only errors wrapped with [RetryableError] are retried; everything else is
// returned to the caller on the first attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// The backoff doubles per attempt; Retry-After hints are honoured up to 10
// seconds.
//
// Response caching lives in [github.com/jennychem/storefront/pkg/cache].
package httputil
