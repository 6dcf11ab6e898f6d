package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jennychem/storefront/pkg/buildinfo"
	"github.com/jennychem/storefront/pkg/cache"
	sferrors "github.com/jennychem/storefront/pkg/errors"
	"github.com/jennychem/storefront/pkg/httputil"
	"github.com/jennychem/storefront/pkg/observability"
)

// Defaults applied by NewClient.
const (
	DefaultAPIVersion   = "2024-04"
	DefaultProductCount = 8
	DefaultArticleCount = 20
	DefaultBlogHandle   = "news"
	DefaultTTL          = time.Hour

	httpTimeout   = 10 * time.Second
	retryAttempts = 3
	retryDelay    = time.Second
	maxErrorBody  = 4 << 10
)

// Options configures a Client.
type Options struct {
	Shop       string // bare shop domain, e.g. "jennychem.myshopify.com"
	Token      string // Storefront API public access token
	APIVersion string // defaults to DefaultAPIVersion
	Country    string // @inContext country code, optional
	Language   string // @inContext language code, optional

	ProductCount int    // defaults to DefaultProductCount
	ArticleCount int    // defaults to DefaultArticleCount
	BlogHandle   string // defaults to DefaultBlogHandle

	Cache      cache.Cache   // defaults to a NullCache
	TTL        time.Duration // cache TTL, defaults to DefaultTTL
	HTTPClient *http.Client  // defaults to a client with a 10s timeout
	Logger     *log.Logger   // defaults to log.Default()
}

// Client queries the Storefront API with caching and retries.
// A Client is safe for concurrent use if its Cache is.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	logger   *log.Logger
	shop     string
	endpoint string
	headers  map[string]string

	country      string
	language     string
	productCount int
	articleCount int
	blogHandle   string

	attempts int
	delay    time.Duration
}

// NewClient validates opts and creates a Client.
func NewClient(opts Options) (*Client, error) {
	if err := sferrors.ValidateShopDomain(opts.Shop); err != nil {
		return nil, err
	}
	if opts.APIVersion == "" {
		opts.APIVersion = DefaultAPIVersion
	}
	if err := sferrors.ValidateAPIVersion(opts.APIVersion); err != nil {
		return nil, err
	}
	if opts.BlogHandle == "" {
		opts.BlogHandle = DefaultBlogHandle
	}
	if err := sferrors.ValidateHandle(opts.BlogHandle); err != nil {
		return nil, err
	}
	if opts.ProductCount <= 0 {
		opts.ProductCount = DefaultProductCount
	}
	if opts.ArticleCount <= 0 {
		opts.ArticleCount = DefaultArticleCount
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: httpTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	shop := strings.ToLower(opts.Shop)
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   buildinfo.UserAgent(),
	}
	if opts.Token != "" {
		headers["X-Shopify-Storefront-Access-Token"] = opts.Token
	}

	return &Client{
		http:         opts.HTTPClient,
		cache:        opts.Cache,
		keyer:        cache.NewScopedKeyer(cache.NewDefaultKeyer(), "shop:"+shop+":"),
		ttl:          opts.TTL,
		logger:       opts.Logger,
		shop:         shop,
		endpoint:     fmt.Sprintf("https://%s/api/%s/graphql.json", shop, opts.APIVersion),
		headers:      headers,
		country:      strings.ToUpper(opts.Country),
		language:     strings.ToUpper(opts.Language),
		productCount: opts.ProductCount,
		articleCount: opts.ArticleCount,
		blogHandle:   opts.BlogHandle,
		attempts:     retryAttempts,
		delay:        retryDelay,
	}, nil
}

// Shop returns the shop domain.
func (c *Client) Shop() string { return c.shop }

// ProductURL returns the online store URL of a product.
func (c *Client) ProductURL(handle string) string {
	return "https://" + c.shop + "/products/" + url.PathEscape(handle)
}

// RecommendedProducts returns the most recently updated products.
// If refresh is true, cached data is bypassed.
func (c *Client) RecommendedProducts(ctx context.Context, refresh bool) ([]Product, error) {
	vars := c.contextVars()
	vars["first"] = c.productCount

	var data productsData
	if err := c.Do(ctx, opRecommendedProducts, recommendedProductsQuery, vars, refresh, &data); err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(data.Products.Nodes))
	for _, n := range data.Products.Nodes {
		products = append(products, n.product())
	}
	return products, nil
}

// RecommendedArticles returns the newest articles of the configured blog.
// If refresh is true, cached data is bypassed.
func (c *Client) RecommendedArticles(ctx context.Context, refresh bool) ([]Article, error) {
	vars := c.contextVars()
	vars["first"] = c.articleCount
	vars["handle"] = c.blogHandle

	var data blogData
	if err := c.Do(ctx, opRecommendedBlogPosts, recommendedBlogPostsQuery, vars, refresh, &data); err != nil {
		return nil, err
	}
	if data.Blog == nil {
		return nil, sferrors.New(sferrors.ErrCodeNotFound, "blog %q not found on %s", c.blogHandle, c.shop)
	}
	return data.Blog.Articles.Nodes, nil
}

func (c *Client) contextVars() map[string]any {
	vars := map[string]any{}
	if c.country != "" {
		vars["country"] = c.country
	}
	if c.language != "" {
		vars["language"] = c.language
	}
	return vars
}

// Do runs a GraphQL operation and decodes its data object into v.
// Responses are served from the cache unless refresh is true; fresh responses
// are written back with the client TTL.
func (c *Client) Do(ctx context.Context, operation, query string, vars map[string]any, refresh bool, v any) error {
	key := c.keyer.QueryKey(operation, vars)

	if !refresh {
		data, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Debug("cache read failed", "operation", operation, "err", err)
		}
		if ok && json.Unmarshal(data, v) == nil {
			observability.Cache().OnCacheHit(ctx, operation)
			c.logger.Debug("cache hit", "operation", operation)
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, operation)
	}

	var data json.RawMessage
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		data, err = c.post(ctx, operation, query, vars)
		return err
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return sferrors.Wrap(sferrors.ErrCodeTimeout, err, "%s took too long to answer", c.shop)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return sferrors.Wrap(sferrors.ErrCodeInternal, err, "decode %s response", operation)
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Debug("cache write failed", "operation", operation, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, operation, len(data))
	}
	return nil
}

type gqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// post performs a single GraphQL request and returns the raw data object.
func (c *Client) post(ctx context.Context, operation, query string, vars map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(gqlRequest{Query: query, OperationName: operation, Variables: vars})
	if err != nil {
		return nil, sferrors.Wrap(sferrors.ErrCodeInternal, err, "encode %s request", operation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, sferrors.Wrap(sferrors.ErrCodeInternal, err, "build %s request", operation)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)
	c.logger.Debug("storefront query", "operation", operation, "request_id", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(sferrors.Wrap(sferrors.ErrCodeNetwork, err, "query %s", c.shop))
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, httputil.Retryable(sferrors.Wrap(sferrors.ErrCodeNetwork, err, "decode %s response", operation))
	}
	if err := checkGraphQLErrors(out.Errors); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || string(out.Data) == "null" {
		return nil, sferrors.New(sferrors.ErrCodeGraphQL, "%s returned no data", operation)
	}
	return out.Data, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized:
		return sferrors.New(sferrors.ErrCodeUnauthorized, "storefront token rejected (status %d)", code)
	case code == http.StatusForbidden:
		return sferrors.New(sferrors.ErrCodeForbidden, "storefront access forbidden (status %d)", code)
	case code == http.StatusNotFound:
		return sferrors.New(sferrors.ErrCodeNotFound, "storefront endpoint not found (status %d)", code)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return httputil.Retryable(&sferrors.RateLimitedError{RetryAfter: retryAfter})
	case code >= 500:
		return httputil.Retryable(sferrors.New(sferrors.ErrCodeNetwork, "storefront unavailable (status %d)", code))
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return sferrors.New(sferrors.ErrCodeNetwork, "unexpected status %d: %s", code, strings.TrimSpace(string(msg)))
	}
}

func checkGraphQLErrors(errs []gqlError) error {
	if len(errs) == 0 {
		return nil
	}
	for _, e := range errs {
		switch e.Extensions.Code {
		case "THROTTLED":
			return httputil.Retryable(&sferrors.RateLimitedError{Message: e.Message})
		case "ACCESS_DENIED", "UNAUTHORIZED":
			return sferrors.New(sferrors.ErrCodeUnauthorized, "%s", e.Message)
		}
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return sferrors.New(sferrors.ErrCodeGraphQL, "%s", strings.Join(msgs, "; "))
}
