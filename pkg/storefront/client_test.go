package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jennychem/storefront/pkg/cache"
	sferrors "github.com/jennychem/storefront/pkg/errors"
)

const productsResponse = `{
  "data": {
    "products": {
      "nodes": [
        {
          "id": "gid://shopify/Product/1",
          "title": "Chalk Ball",
          "handle": "chalk-ball",
          "priceRange": {"minVariantPrice": {"amount": "6.5", "currencyCode": "GBP"}},
          "images": {"nodes": [{"id": "gid://shopify/ProductImage/10", "url": "https://cdn.shopify.com/ball.png", "altText": "Chalk ball", "width": 800, "height": 800}]}
        },
        {
          "id": "gid://shopify/Product/2",
          "title": "Liquid Chalk",
          "handle": "liquid-chalk",
          "priceRange": {"minVariantPrice": {"amount": "12.0", "currencyCode": "GBP"}},
          "images": {"nodes": []}
        }
      ]
    }
  }
}`

const articlesResponse = `{
  "data": {
    "blog": {
      "id": "gid://shopify/Blog/1",
      "articles": {
        "nodes": [
          {"id": "gid://shopify/Article/7", "title": "Caring for your skin", "image": null, "publishedAt": "2024-03-01T09:00:00Z", "excerpt": "Climbers' hands"}
        ]
      }
    }
  }
}`

func newTestClient(t *testing.T, c cache.Cache, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{
		Shop:     "jennychem.myshopify.com",
		Token:    "public-token",
		Country:  "gb",
		Language: "en",
		Cache:    c,
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	client.http = srv.Client()
	client.endpoint = srv.URL
	client.delay = time.Millisecond
	return client
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code sferrors.Code
	}{
		{"empty shop", Options{}, sferrors.ErrCodeInvalidShop},
		{"scheme", Options{Shop: "https://shop.example.com"}, sferrors.ErrCodeInvalidShop},
		{"bad version", Options{Shop: "shop.example.com", APIVersion: "2024-05"}, sferrors.ErrCodeInvalidConfig},
		{"bad blog", Options{Shop: "shop.example.com", BlogHandle: "../admin"}, sferrors.ErrCodeInvalidHandle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.opts)
			if !sferrors.Is(err, tt.code) {
				t.Errorf("NewClient() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Options{Shop: "Shop.Example.com"})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if c.Shop() != "shop.example.com" {
		t.Errorf("Shop() = %q", c.Shop())
	}
	if want := "https://shop.example.com/api/" + DefaultAPIVersion + "/graphql.json"; c.endpoint != want {
		t.Errorf("endpoint = %q, want %q", c.endpoint, want)
	}
	if c.productCount != DefaultProductCount || c.articleCount != DefaultArticleCount {
		t.Errorf("counts = %d/%d", c.productCount, c.articleCount)
	}
	if _, ok := c.headers["X-Shopify-Storefront-Access-Token"]; ok {
		t.Error("token header set without a token")
	}
	if got := c.ProductURL("chalk-ball"); got != "https://shop.example.com/products/chalk-ball" {
		t.Errorf("ProductURL() = %q", got)
	}
}

func TestRecommendedProducts(t *testing.T) {
	var req gqlRequest
	var header http.Header
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		header = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		io.WriteString(w, productsResponse)
	})

	got, err := client.RecommendedProducts(context.Background(), false)
	if err != nil {
		t.Fatalf("RecommendedProducts() error: %v", err)
	}

	want := []Product{
		{
			ID:     "gid://shopify/Product/1",
			Title:  "Chalk Ball",
			Handle: "chalk-ball",
			Price:  Money{Amount: "6.5", CurrencyCode: "GBP"},
			Images: []Image{{ID: "gid://shopify/ProductImage/10", URL: "https://cdn.shopify.com/ball.png", AltText: "Chalk ball", Width: 800, Height: 800}},
		},
		{
			ID:     "gid://shopify/Product/2",
			Title:  "Liquid Chalk",
			Handle: "liquid-chalk",
			Price:  Money{Amount: "12.0", CurrencyCode: "GBP"},
			Images: []Image{},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RecommendedProducts() mismatch (-want +got):\n%s", diff)
	}

	if req.OperationName != opRecommendedProducts {
		t.Errorf("operationName = %q", req.OperationName)
	}
	wantVars := map[string]any{"first": float64(DefaultProductCount), "country": "GB", "language": "EN"}
	if diff := cmp.Diff(wantVars, req.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
	if header.Get("X-Shopify-Storefront-Access-Token") != "public-token" {
		t.Error("access token header missing")
	}
	if header.Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}
}

func TestRecommendedArticles(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, articlesResponse)
	})

	got, err := client.RecommendedArticles(context.Background(), false)
	if err != nil {
		t.Fatalf("RecommendedArticles() error: %v", err)
	}
	want := []Article{{
		ID:          "gid://shopify/Article/7",
		Title:       "Caring for your skin",
		PublishedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Excerpt:     "Climbers' hands",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RecommendedArticles() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommendedArticlesMissingBlog(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":{"blog":null}}`)
	})

	_, err := client.RecommendedArticles(context.Background(), false)
	if !sferrors.Is(err, sferrors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestClientCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer fc.Close()

	var calls atomic.Int32
	client := newTestClient(t, fc, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, productsResponse)
	})
	ctx := context.Background()

	for range 2 {
		if _, err := client.RecommendedProducts(ctx, false); err != nil {
			t.Fatalf("RecommendedProducts() error: %v", err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server calls = %d, want 1 (second served from cache)", n)
	}

	if _, err := client.RecommendedProducts(ctx, true); err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server calls = %d, want 2 after refresh", n)
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		code   sferrors.Code
		calls  int32
	}{
		{http.StatusUnauthorized, sferrors.ErrCodeUnauthorized, 1},
		{http.StatusForbidden, sferrors.ErrCodeForbidden, 1},
		{http.StatusNotFound, sferrors.ErrCodeNotFound, 1},
		{http.StatusBadRequest, sferrors.ErrCodeNetwork, 1},
		{http.StatusBadGateway, sferrors.ErrCodeNetwork, retryAttempts},
		{http.StatusTooManyRequests, sferrors.ErrCodeRateLimited, retryAttempts},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			})

			_, err := client.RecommendedProducts(context.Background(), false)
			if !sferrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if n := calls.Load(); n != tt.calls {
				t.Errorf("calls = %d, want %d", n, tt.calls)
			}
		})
	}
}

func TestClientRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, productsResponse)
	})

	got, err := client.RecommendedProducts(context.Background(), false)
	if err != nil {
		t.Fatalf("RecommendedProducts() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestClientGraphQLErrors(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errors":[{"message":"Field 'prodcts' doesn't exist"}]}`)
	})

	_, err := client.RecommendedProducts(context.Background(), false)
	if !sferrors.Is(err, sferrors.ErrCodeGraphQL) {
		t.Fatalf("error = %v, want GRAPHQL", err)
	}
	if msg := sferrors.UserMessage(err); msg != "Field 'prodcts' doesn't exist" {
		t.Errorf("UserMessage() = %q", msg)
	}
}

func TestClientContextCanceled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.RecommendedProducts(ctx, false); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestClientDeadlineIsTimeout(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.RecommendedArticles(ctx, false)
	if code := sferrors.GetCode(err); code != sferrors.ErrCodeTimeout {
		t.Fatalf("GetCode() = %q, want %q (err %v)", code, sferrors.ErrCodeTimeout, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("errors.Is(err, context.DeadlineExceeded) = false for %v", err)
	}
}

func TestCheckGraphQLErrorsThrottled(t *testing.T) {
	errs := []gqlError{{Message: "Throttled"}}
	errs[0].Extensions.Code = "THROTTLED"
	err := checkGraphQLErrors(errs)
	if !sferrors.Is(err, sferrors.ErrCodeRateLimited) {
		t.Errorf("error = %v, want RATE_LIMITED", err)
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{Money{Amount: "12.0", CurrencyCode: "GBP"}, "£12.00"},
		{Money{Amount: "6.5", CurrencyCode: "USD"}, "$6.50"},
		{Money{Amount: "9", CurrencyCode: "CAD"}, "9.00 CAD"},
		{Money{Amount: "3"}, "3.00"},
		{Money{}, ""},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.m, got, tt.want)
		}
	}
}
