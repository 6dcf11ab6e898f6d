package web

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/jennychem/storefront/pkg/carousel"
	"github.com/jennychem/storefront/pkg/deferred"
	sferrors "github.com/jennychem/storefront/pkg/errors"
	"github.com/jennychem/storefront/pkg/home"
	"github.com/jennychem/storefront/pkg/storefront"
	"github.com/jennychem/storefront/pkg/viewport"
)

// Query parameters of the homepage.
const (
	paramProducts = "products"
	paramTips     = "tips"
	paramWidth    = "w"
	paramRefresh  = "refresh"
)

// section is the view model of one deferred carousel.
type section struct {
	Name     string
	Title    string
	Pending  bool
	Err      string
	Products []home.ProductCard
	Articles []home.ArticleCard
	Empty    bool
	Prev     string
	Next     string
	Retry    string
	Hint     string
}

type pageView struct {
	Content  home.Content
	Mode     viewport.Mode
	Mobile   bool
	Products section
	Tips     section
	// Refresh is the meta refresh delay in seconds, zero when nothing is pending.
	Refresh int
	Reload  string
}

// homeState is the navigation state carried in the query string.
type homeState struct {
	products int
	tips     int
	width    string
}

// href links to the homepage at the given carousel positions. refresh names
// the section to fetch again, or is empty.
func (st homeState) href(products, tips int, refresh string) string {
	q := url.Values{}
	q.Set(paramProducts, strconv.Itoa(products))
	q.Set(paramTips, strconv.Itoa(tips))
	if st.width != "" {
		q.Set(paramWidth, st.width)
	}
	if refresh != "" {
		q.Set(paramRefresh, refresh)
	}
	return "/?" + q.Encode()
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := homeState{
		products: queryInt(q, paramProducts),
		tips:     queryInt(q, paramTips),
		width:    q.Get(paramWidth),
	}
	mode := detectMode(r)

	// The page is bound to the request, but the fetches behind it are not:
	// closing the page only stops this request waiting.
	page := home.Load(r.Context(), s.source,
		home.WithContent(s.content),
		refreshOption(q.Get(paramRefresh)),
	)
	defer page.Close()

	ctx, cancel := context.WithTimeout(r.Context(), s.renderTimeout)
	products := page.Products().Wait(ctx)
	articles := page.Articles().Wait(ctx)
	cancel()

	view := pageView{
		Content:  page.Content,
		Mode:     mode,
		Mobile:   mode == viewport.Mobile,
		Products: productSection(products, mode, st, page.Content.ProductsTitle),
		Tips:     articleSection(articles, mode, st, page.Content.TipsTitle),
		Reload:   st.href(st.products, st.tips, ""),
	}
	if view.Products.Pending || view.Tips.Pending {
		view.Refresh = int(math.Ceil(s.refreshAfter.Seconds()))
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "home.tmpl", view); err != nil {
		log.FromContext(r.Context()).Error("render home", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Accept-CH", "Sec-CH-Viewport-Width, Viewport-Width")
	w.Header().Set("Vary", "Sec-CH-Viewport-Width, Viewport-Width, User-Agent")
	if view.Refresh > 0 {
		w.Header().Set("Cache-Control", "no-store")
	}
	_, _ = buf.WriteTo(w)
}

func productSection(s deferred.State[[]storefront.Product], mode viewport.Mode, st homeState, title string) section {
	base := section{Name: paramProducts, Title: title}
	return deferred.Render(s,
		func() section {
			base.Pending = true
			return base
		},
		func(items []storefront.Product) section {
			c := home.ProductCarousel(items, mode, st.products)
			base.Products = c.Visible()
			base.Empty = c.Len() == 0
			if c.Len() > 0 {
				base.Prev = st.href(stepIndex(c, false), st.tips, "")
				base.Next = st.href(stepIndex(c, true), st.tips, "")
			}
			return base
		},
		func(err error) section {
			base.Err = sferrors.UserMessage(err)
			base.Hint = home.FailureHint(err)
			base.Retry = st.href(st.products, st.tips, paramProducts)
			return base
		},
	)
}

func articleSection(s deferred.State[[]storefront.Article], mode viewport.Mode, st homeState, title string) section {
	base := section{Name: paramTips, Title: title}
	return deferred.Render(s,
		func() section {
			base.Pending = true
			return base
		},
		func(items []storefront.Article) section {
			c := home.ArticleCarousel(items, mode, st.tips)
			base.Articles = c.Visible()
			base.Empty = c.Len() == 0
			if c.Len() > 0 {
				base.Prev = st.href(st.products, stepIndex(c, false), "")
				base.Next = st.href(st.products, stepIndex(c, true), "")
			}
			return base
		},
		func(err error) section {
			base.Err = sferrors.UserMessage(err)
			base.Hint = home.FailureHint(err)
			base.Retry = st.href(st.products, st.tips, paramTips)
			return base
		},
	)
}

// refreshOption maps the refresh parameter to a load option: a section name
// refreshes that section, "1" refreshes both.
func refreshOption(v string) home.LoadOption {
	switch v {
	case paramProducts:
		return home.WithSectionRefresh(home.SectionProducts)
	case paramTips:
		return home.WithSectionRefresh(home.SectionArticles)
	default:
		return home.WithRefresh(v == "1")
	}
}

func stepIndex[T any](c *carousel.Carousel[T], forward bool) int {
	w := c.Window()
	if forward {
		return w.NextIndex(c.Skip())
	}
	return w.PrevIndex(c.Skip())
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if err := sferrors.ValidateHandle(handle); err != nil {
		http.Error(w, sferrors.UserMessage(err), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, s.productURL(handle), http.StatusFound)
}

// detectMode classifies the client viewport. Client hints win, then the w
// query parameter, then a User-Agent guess.
func detectMode(r *http.Request) viewport.Mode {
	classifier := viewport.Web()
	for _, h := range []string{"Sec-CH-Viewport-Width", "Viewport-Width"} {
		if width, err := strconv.Atoi(strings.TrimSpace(r.Header.Get(h))); err == nil && width > 0 {
			return classifier.Classify(width)
		}
	}
	if width, err := strconv.Atoi(r.URL.Query().Get(paramWidth)); err == nil && width > 0 {
		return classifier.Classify(width)
	}
	if strings.Contains(r.UserAgent(), "Mobi") {
		return viewport.Mobile
	}
	return viewport.Desktop
}

// queryInt parses a carousel index. Garbage means the start position.
func queryInt(q url.Values, key string) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0
	}
	return n
}
