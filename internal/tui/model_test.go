package tui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	sferrors "github.com/jennychem/storefront/pkg/errors"
	"github.com/jennychem/storefront/pkg/home"
	"github.com/jennychem/storefront/pkg/storefront"
	"github.com/jennychem/storefront/pkg/viewport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubSource struct {
	failProducts atomic.Bool
	productsErr  error
	block        chan struct{}
}

func (s *stubSource) RecommendedProducts(ctx context.Context, refresh bool) ([]storefront.Product, error) {
	if s.failProducts.Load() && !refresh {
		return nil, errors.New("upstream down")
	}
	if s.productsErr != nil {
		return nil, s.productsErr
	}
	var out []storefront.Product
	for _, h := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		out = append(out, storefront.Product{ID: h, Title: "Product " + h, Handle: h})
	}
	return out, nil
}

func (s *stubSource) RecommendedArticles(ctx context.Context, refresh bool) ([]storefront.Article, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []storefront.Article{{ID: "1", Title: "Tip one"}, {ID: "2", Title: "Tip two"}}, nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// settle delivers the products result the way the program would.
func settleProducts(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, waitProducts(m.page.Products())())
}

func settleArticles(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, waitArticles(m.page.Articles())())
}

func productTitles(m Model) []string {
	var out []string
	for _, c := range m.products.Visible() {
		out = append(out, c.Handle)
	}
	return out
}

func newModel(t *testing.T, src home.Source, width int) Model {
	t.Helper()
	page := home.Load(context.Background(), src)
	t.Cleanup(page.Close)
	return New(page, Options{
		Width:      width,
		ProductURL: func(h string) string { return "https://shop.example/products/" + h },
	})
}

func TestFallbackUntilReady(t *testing.T) {
	src := &stubSource{block: make(chan struct{})}
	m := newModel(t, src, 120)
	m = settleProducts(t, m)

	view := m.View()
	assert.Contains(t, view, "Loading...")
	assert.Contains(t, view, "Product a")

	close(src.block)
	m = settleArticles(t, m)
	view = m.View()
	assert.NotContains(t, view, "Loading...")
	assert.Contains(t, view, "Tip one")
}

func TestNavigationWrapsAndFollowsFocus(t *testing.T) {
	m := newModel(t, &stubSource{}, 120)
	m = settleProducts(t, m)
	m = settleArticles(t, m)

	require.NotNil(t, m.products)
	assert.Equal(t, []string{"e", "f", "g", "h", "a"}, productTitles(m))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.products.Index())
	m = update(t, m, keyRunes("h"))
	m = update(t, m, keyRunes("h"))
	assert.Equal(t, 6, m.products.Index())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, sectionArticles, m.focus)
	m = update(t, m, keyRunes("l"))
	assert.Equal(t, 0, m.articles.Index(), "skip 2 over two tips wraps to the start")
	assert.Equal(t, 6, m.products.Index(), "unfocused carousel does not move")
}

func TestEnterOpensLastVisibleProduct(t *testing.T) {
	m := newModel(t, &stubSource{}, 120)
	m = settleProducts(t, m)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "https://shop.example/products/c", m.opened)
	assert.Contains(t, m.View(), "https://shop.example/products/c")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Empty(t, m.opened)
}

func TestResizeSwitchesLayout(t *testing.T) {
	m := newModel(t, &stubSource{}, 120)
	m = settleProducts(t, m)
	assert.Equal(t, 5, m.products.Slots())

	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 40})
	assert.Equal(t, viewport.Mobile, m.tracker.Mode())
	assert.Equal(t, 1, m.products.Slots())
	assert.Len(t, m.products.Visible(), 1)

	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	assert.Equal(t, 5, m.products.Slots())
}

func TestRetryAfterFailure(t *testing.T) {
	src := &stubSource{}
	src.failProducts.Store(true)
	m := newModel(t, src, 120)
	m = settleProducts(t, m)

	assert.Nil(t, m.products)
	assert.Contains(t, m.View(), "upstream down")
	assert.Contains(t, m.View(), "press r to try again")

	next, cmd := m.Update(keyRunes("r"))
	m = next.(Model)
	require.NotNil(t, cmd)
	m = settleProducts(t, m)
	require.NotNil(t, m.products)
	assert.Equal(t, 8, m.products.Len())
}

func TestFailureShowsHint(t *testing.T) {
	src := &stubSource{productsErr: sferrors.New(sferrors.ErrCodeForbidden, "storefront token lacks access")}
	m := newModel(t, src, 120)
	m = settleProducts(t, m)

	view := m.View()
	assert.Contains(t, view, "storefront token lacks access")
	assert.Contains(t, view, "The shop rejected the storefront access token.")

	src = &stubSource{}
	src.failProducts.Store(true)
	m = settleProducts(t, newModel(t, src, 120))
	assert.NotContains(t, m.View(), "The shop")
}

func TestRetryIgnoredWhenNotFailed(t *testing.T) {
	m := newModel(t, &stubSource{}, 120)
	m = settleProducts(t, m)
	before := m.page.Products()

	next, cmd := m.Update(keyRunes("r"))
	assert.Nil(t, cmd)
	assert.Same(t, before, next.(Model).page.Products())
}

func TestStaleResultIgnored(t *testing.T) {
	src := &stubSource{}
	src.failProducts.Store(true)
	m := newModel(t, src, 120)
	old := m.page.Products()
	<-old.Done()

	m.page.RetryProducts()
	m = update(t, m, productsSettledMsg{task: old})
	assert.Nil(t, m.products)
}

func TestQuitCancelsPending(t *testing.T) {
	src := &stubSource{block: make(chan struct{})}
	defer close(src.block)
	m := newModel(t, src, 120)

	_, cmd := m.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	<-m.page.Articles().Done()
	assert.True(t, m.page.Articles().State().IsFailed())
}

func TestViewSections(t *testing.T) {
	m := newModel(t, &stubSource{}, 120)
	view := m.View()
	c := home.DefaultContent()
	for _, want := range []string{c.Hero.Title, c.ProductsTitle, c.TipsTitle, c.Story.CTA.Label, "quit"} {
		assert.True(t, strings.Contains(view, want), "view missing %q", want)
	}
	assert.Contains(t, view, "photos tagged", "desktop social shows the gallery")

	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 40})
	assert.NotContains(t, m.View(), "photos tagged")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "…", truncate("abcdef", 1))
}
