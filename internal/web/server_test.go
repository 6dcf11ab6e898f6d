package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jennychem/storefront/pkg/cache"
	sferrors "github.com/jennychem/storefront/pkg/errors"
	"github.com/jennychem/storefront/pkg/home"
	"github.com/jennychem/storefront/pkg/storefront"
	"github.com/jennychem/storefront/pkg/viewport"
)

type stubSource struct {
	productsErr       error
	block             chan struct{}
	refreshed         chan bool
	articlesRefreshed chan bool
}

func (s *stubSource) RecommendedProducts(ctx context.Context, refresh bool) ([]storefront.Product, error) {
	if s.refreshed != nil {
		s.refreshed <- refresh
	}
	if s.productsErr != nil {
		return nil, s.productsErr
	}
	var out []storefront.Product
	for _, h := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		out = append(out, storefront.Product{
			ID:     h,
			Title:  "Product " + strings.ToUpper(h),
			Handle: "product-" + h,
			Price:  storefront.Money{Amount: "12.0", CurrencyCode: "GBP"},
		})
	}
	return out, nil
}

func (s *stubSource) RecommendedArticles(ctx context.Context, refresh bool) ([]storefront.Article, error) {
	if s.articlesRefreshed != nil {
		s.articlesRefreshed <- refresh
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []storefront.Article{
		{ID: "1", Title: "Tip One", PublishedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Title: "Tip Two"},
	}, nil
}

func newTestServer(t *testing.T, src home.Source) *Server {
	t.Helper()
	srv := New(Options{
		Source:        src,
		ProductURL:    func(h string) string { return "https://shop.example/products/" + h },
		RenderTimeout: 50 * time.Millisecond,
		RefreshAfter:  time.Second,
		Logger:        log.New(io.Discard),
	})
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, h http.Handler, target string, header map[string]string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHomeRendersSections(t *testing.T) {
	srv := newTestServer(t, &stubSource{})
	resp, body := get(t, srv, "/", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	c := home.DefaultContent()
	assert.Contains(t, body, c.Hero.Title)
	assert.Contains(t, body, c.ProductsTitle)
	assert.Contains(t, body, "Tip One")
	assert.Contains(t, body, "1 March 2024")
	assert.Contains(t, body, "£12.00")
	assert.Contains(t, body, "VIEW ALL SIZES")
	assert.NotContains(t, body, "Loading...")
	assert.NotContains(t, body, `http-equiv="refresh"`)
}

func TestHomeDesktopWindow(t *testing.T) {
	srv := newTestServer(t, &stubSource{})
	_, body := get(t, srv, "/?products=0", nil)

	// Window of five ending at index 0: E F G H A.
	for _, want := range []string{"Product E", "Product F", "Product G", "Product H", "Product A"} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "Product B")
	assert.Contains(t, body, `href="/?products=2&amp;tips=0#products"`)
	assert.Contains(t, body, `href="/?products=6&amp;tips=0#products"`)
}

func TestHomeMobileFromClientHint(t *testing.T) {
	srv := newTestServer(t, &stubSource{})
	_, body := get(t, srv, "/?products=3", map[string]string{"Sec-CH-Viewport-Width": "390"})

	assert.Contains(t, body, `data-layout="mobile"`)
	assert.Contains(t, body, "Product D")
	assert.NotContains(t, body, "Product C")
	assert.NotContains(t, body, `class="gallery"`)
}

func TestHomeWrapsOutOfRangeIndex(t *testing.T) {
	srv := newTestServer(t, &stubSource{})
	_, body := get(t, srv, "/?products=-1&w=375", nil)
	assert.Contains(t, body, "Product H")
	assert.Contains(t, body, `href="/?products=1&amp;tips=0&amp;w=375#products"`)
}

func TestHomePendingSectionFallsBack(t *testing.T) {
	src := &stubSource{block: make(chan struct{})}
	defer close(src.block)
	srv := newTestServer(t, src)

	_, body := get(t, srv, "/", nil)
	assert.Contains(t, body, "Loading...")
	assert.Contains(t, body, "Product A", "ready section renders alongside a pending one")
	assert.Contains(t, body, `http-equiv="refresh"`)
}

func TestHomeFailedSectionOffersRetry(t *testing.T) {
	srv := newTestServer(t, &stubSource{productsErr: errors.New("upstream down")})
	_, body := get(t, srv, "/", nil)

	assert.Contains(t, body, "Couldn't load this section: upstream down")
	assert.Contains(t, body, "Try again")
	assert.Contains(t, body, "refresh=products")
	assert.NotContains(t, body, "refresh=1")
	assert.Contains(t, body, "Tip One")
}

func TestHomeFailedSectionShowsHint(t *testing.T) {
	srv := newTestServer(t, &stubSource{productsErr: sferrors.New(sferrors.ErrCodeUnauthorized, "storefront token rejected")})
	_, body := get(t, srv, "/", nil)

	assert.Contains(t, body, "Couldn't load this section: storefront token rejected")
	assert.Contains(t, body, "The shop rejected the storefront access token.")
}

func TestHomeRefreshIsScopedToSection(t *testing.T) {
	src := &stubSource{refreshed: make(chan bool, 1), articlesRefreshed: make(chan bool, 1)}
	srv := newTestServer(t, src)
	get(t, srv, "/?refresh=products", nil)
	assert.True(t, <-src.refreshed)
	assert.False(t, <-src.articlesRefreshed, "healthy section is served from the cache")

	get(t, srv, "/?refresh=tips", nil)
	assert.False(t, <-src.refreshed)
	assert.True(t, <-src.articlesRefreshed)
}

func TestHomeRefreshBypassesCache(t *testing.T) {
	src := &stubSource{refreshed: make(chan bool, 1)}
	srv := newTestServer(t, src)
	get(t, srv, "/?refresh=1", nil)
	assert.True(t, <-src.refreshed)
}

func TestProductRedirect(t *testing.T) {
	srv := newTestServer(t, &stubSource{})

	resp, _ := get(t, srv, "/products/snow-foam", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://shop.example/products/snow-foam", resp.Header.Get("Location"))

	resp, _ = get(t, srv, "/products/Bad%20Handle", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	resp, body := get(t, newTestServer(t, &stubSource{}), "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}

func TestRequestIDEcho(t *testing.T) {
	srv := newTestServer(t, &stubSource{})
	resp, _ := get(t, srv, "/healthz", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))

	resp, _ = get(t, srv, "/healthz", map[string]string{RequestIDHeader: "<script>"})
	assert.NotEqual(t, "<script>", resp.Header.Get(RequestIDHeader))
}

func TestDetectMode(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header map[string]string
		want   viewport.Mode
	}{
		{"default desktop", "/", nil, viewport.Desktop},
		{"mobile ua", "/", map[string]string{"User-Agent": "Mozilla/5.0 (iPhone) Mobile/15E148"}, viewport.Mobile},
		{"hint beats ua", "/", map[string]string{"Viewport-Width": "1280", "User-Agent": "Mobile"}, viewport.Desktop},
		{"query width", "/?w=500", nil, viewport.Mobile},
		{"breakpoint is desktop", "/?w=768", nil, viewport.Desktop},
		{"garbage hint ignored", "/?w=400", map[string]string{"Sec-CH-Viewport-Width": "wide"}, viewport.Mobile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, detectMode(req))
		})
	}
}

func TestListenAndServeShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := newTestServer(t, &stubSource{})

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

const upstreamProducts = `{"data":{"products":{"nodes":[
  {"id":"gid://shopify/Product/1","title":"Snow Foam","handle":"snow-foam",
   "priceRange":{"minVariantPrice":{"amount":"14.99","currencyCode":"GBP"}},"images":{"nodes":[]}}
]}}}`

const upstreamArticles = `{"data":{"blog":{"id":"gid://shopify/Blog/1","articles":{"nodes":[
  {"id":"gid://shopify/Article/1","title":"Rinse Before You Foam","image":null,"publishedAt":"2024-03-01T09:00:00Z","excerpt":""}
]}}}`

// upstreamTransport sends every request to a local test server.
type upstreamTransport struct{ target *url.URL }

func (rt upstreamTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

// A shop slower than the render timeout must still end up on the page: the
// first load falls back, its fetches finish in the background and a later
// load renders from the response cache.
func TestSlowUpstreamFillsCacheAcrossRequests(t *testing.T) {
	var answered atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OperationName string `json:"operationName"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		select {
		case <-time.After(200 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		answered.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if req.OperationName == "RecommendedProducts" {
			io.WriteString(w, upstreamProducts)
		} else {
			io.WriteString(w, upstreamArticles)
		}
	}))
	defer upstream.Close()
	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	defer fc.Close()

	client, err := storefront.NewClient(storefront.Options{
		Shop:       "jennychem.myshopify.com",
		Token:      "public-token",
		Cache:      fc,
		HTTPClient: &http.Client{Transport: upstreamTransport{target: target}},
		Logger:     log.New(io.Discard),
	})
	require.NoError(t, err)

	srv := New(Options{
		Source:        client,
		RenderTimeout: 50 * time.Millisecond,
		FetchTimeout:  5 * time.Second,
		Logger:        log.New(io.Discard),
	})
	defer srv.Close()

	_, body := get(t, srv, "/", nil)
	require.Contains(t, body, `http-equiv="refresh"`, "first load falls back")

	deadline := time.Now().Add(3 * time.Second)
	for strings.Contains(body, `http-equiv="refresh"`) {
		require.True(t, time.Now().Before(deadline), "sections never rendered")
		time.Sleep(100 * time.Millisecond)
		_, body = get(t, srv, "/", nil)
	}

	assert.Contains(t, body, "Snow Foam")
	assert.Contains(t, body, "Rinse Before You Foam")
	assert.Equal(t, int32(2), answered.Load(), "one upstream call per section, shared across page loads")
}

func TestSharedSourceCallerCancelKeepsFetch(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool
	src := &funcSource{products: func(ctx context.Context) ([]storefront.Product, error) {
		select {
		case <-release:
			finished.Store(true)
			return []storefront.Product{{ID: "1"}}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}
	shared := newSharedSource(src, time.Second)
	defer shared.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := shared.RecommendedProducts(ctx, false)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// A second caller joins the fetch the first one abandoned.
	type result struct {
		items []storefront.Product
		err   error
	}
	joined := make(chan result, 1)
	go func() {
		items, err := shared.RecommendedProducts(context.Background(), false)
		joined <- result{items, err}
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	res := <-joined
	require.NoError(t, res.err)
	assert.Len(t, res.items, 1)
	assert.True(t, finished.Load())
	assert.Equal(t, int32(1), src.calls.Load())
}

type funcSource struct {
	products func(ctx context.Context) ([]storefront.Product, error)
	calls    atomic.Int32
}

func (f *funcSource) RecommendedProducts(ctx context.Context, _ bool) ([]storefront.Product, error) {
	f.calls.Add(1)
	return f.products(ctx)
}

func (f *funcSource) RecommendedArticles(context.Context, bool) ([]storefront.Article, error) {
	return nil, nil
}
