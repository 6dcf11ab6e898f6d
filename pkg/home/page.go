package home

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/jennychem/storefront/pkg/deferred"
	"github.com/jennychem/storefront/pkg/observability"
	"github.com/jennychem/storefront/pkg/storefront"
)

// Section names, used in logs, hooks and URLs.
const (
	SectionProducts = "products"
	SectionArticles = "articles"
)

// Source fetches the data behind the two deferred homepage sections.
// *storefront.Client implements it.
type Source interface {
	RecommendedProducts(ctx context.Context, refresh bool) ([]storefront.Product, error)
	RecommendedArticles(ctx context.Context, refresh bool) ([]storefront.Article, error)
}

var _ Source = (*storefront.Client)(nil)

// Page is one rendering of the homepage. Both sections start loading when the
// page is created and settle independently; the static Content is available
// immediately.
type Page struct {
	Content Content

	ctx    context.Context
	cancel context.CancelFunc
	source Source

	mu       sync.Mutex
	products *deferred.Task[[]storefront.Product]
	articles *deferred.Task[[]storefront.Article]
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	content         Content
	refreshProducts bool
	refreshArticles bool
}

// WithContent replaces DefaultContent.
func WithContent(c Content) LoadOption {
	return func(cfg *loadConfig) { cfg.content = c }
}

// WithRefresh bypasses cached section data on the initial load.
func WithRefresh(refresh bool) LoadOption {
	return func(cfg *loadConfig) {
		cfg.refreshProducts = refresh
		cfg.refreshArticles = refresh
	}
}

// WithSectionRefresh bypasses cached data for one section only, leaving the
// other served from the cache. Unknown section names are ignored.
func WithSectionRefresh(section string) LoadOption {
	return func(cfg *loadConfig) {
		switch section {
		case SectionProducts:
			cfg.refreshProducts = true
		case SectionArticles:
			cfg.refreshArticles = true
		}
	}
}

// Load starts fetching both sections concurrently and returns without waiting.
// Cancelling ctx or calling Close cancels whatever is still pending.
func Load(ctx context.Context, src Source, opts ...LoadOption) *Page {
	cfg := loadConfig{content: DefaultContent()}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Page{
		Content: cfg.content,
		ctx:     ctx,
		cancel:  cancel,
		source:  src,
	}
	p.products = p.startProducts(cfg.refreshProducts)
	p.articles = p.startArticles(cfg.refreshArticles)
	return p
}

// Products returns the current best sellers task.
func (p *Page) Products() *deferred.Task[[]storefront.Product] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.products
}

// Articles returns the current tips task.
func (p *Page) Articles() *deferred.Task[[]storefront.Article] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.articles
}

// RetryProducts cancels the current best sellers task and starts a new one
// that bypasses the cache.
func (p *Page) RetryProducts() *deferred.Task[[]storefront.Product] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.products.Cancel()
	p.products = p.startProducts(true)
	return p.products
}

// RetryArticles cancels the current tips task and starts a new one that
// bypasses the cache.
func (p *Page) RetryArticles() *deferred.Task[[]storefront.Article] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.articles.Cancel()
	p.articles = p.startArticles(true)
	return p.articles
}

// Close cancels any pending section. Settled sections keep their state.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.products.Cancel()
	p.articles.Cancel()
	p.cancel()
}

func (p *Page) startProducts(refresh bool) *deferred.Task[[]storefront.Product] {
	return deferred.Go(p.ctx, tracked(SectionProducts, func(ctx context.Context) ([]storefront.Product, error) {
		return p.source.RecommendedProducts(ctx, refresh)
	}))
}

func (p *Page) startArticles(refresh bool) *deferred.Task[[]storefront.Article] {
	return deferred.Go(p.ctx, tracked(SectionArticles, func(ctx context.Context) ([]storefront.Article, error) {
		return p.source.RecommendedArticles(ctx, refresh)
	}))
}

// tracked reports section loads to the observability hooks and the context
// logger.
func tracked[T any](section string, fetch func(context.Context) ([]T, error)) func(context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		logger := log.FromContext(ctx).With("section", section)
		observability.Load().OnLoadStart(ctx, section)
		start := time.Now()

		items, err := fetch(ctx)
		elapsed := time.Since(start)
		observability.Load().OnLoadComplete(ctx, section, len(items), elapsed, err)

		switch {
		case err == nil:
			logger.Debug("section loaded", "items", len(items), "elapsed", elapsed)
		case errors.Is(err, context.Canceled):
			logger.Debug("section canceled")
		default:
			logger.Warn("section failed", "err", err)
		}
		return items, err
	}
}

// PrefetchStats reports how many items Prefetch stored per section.
type PrefetchStats struct {
	Products int
	Articles int
}

// Prefetch fetches both sections concurrently, bypassing the cache so fresh
// responses are written back. It is used to warm the response cache.
func Prefetch(ctx context.Context, src Source) (PrefetchStats, error) {
	var stats PrefetchStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := src.RecommendedProducts(ctx, true)
		stats.Products = len(products)
		return err
	})
	g.Go(func() error {
		articles, err := src.RecommendedArticles(ctx, true)
		stats.Articles = len(articles)
		return err
	})
	err := g.Wait()
	return stats, err
}
