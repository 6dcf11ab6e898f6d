package web

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jennychem/storefront/pkg/home"
	"github.com/jennychem/storefront/pkg/storefront"
)

// sharedSource runs section fetches on behalf of all requests. A fetch is
// detached from the request that started it and bounded by its own timeout,
// so a request that stops waiting leaves the fetch to finish and fill the
// response cache for the next page load. Concurrent requests for the same
// section share one in-flight fetch.
type sharedSource struct {
	src     home.Source
	timeout time.Duration
	group   singleflight.Group

	// stop ends every in-flight fetch when the server shuts down.
	stop   context.Context
	cancel context.CancelFunc
}

var _ home.Source = (*sharedSource)(nil)

func newSharedSource(src home.Source, timeout time.Duration) *sharedSource {
	stop, cancel := context.WithCancel(context.Background())
	return &sharedSource{src: src, timeout: timeout, stop: stop, cancel: cancel}
}

func (s *sharedSource) RecommendedProducts(ctx context.Context, refresh bool) ([]storefront.Product, error) {
	return shared(ctx, s, home.SectionProducts, refresh, s.src.RecommendedProducts)
}

func (s *sharedSource) RecommendedArticles(ctx context.Context, refresh bool) ([]storefront.Article, error) {
	return shared(ctx, s, home.SectionArticles, refresh, s.src.RecommendedArticles)
}

// Close cancels fetches still running.
func (s *sharedSource) Close() {
	s.cancel()
}

func shared[T any](ctx context.Context, s *sharedSource, section string, refresh bool, fetch func(context.Context, bool) ([]T, error)) ([]T, error) {
	key := section
	if refresh {
		key += ":refresh"
	}

	ch := s.group.DoChan(key, func() (any, error) {
		// Keep the request's values (logger, request ID) but not its deadline.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		unlink := context.AfterFunc(s.stop, cancel)
		defer unlink()
		return fetch(fetchCtx, refresh)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		items, _ := res.Val.([]T)
		return items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
