// Package tui renders the storefront homepage in the terminal with Bubble Tea.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jennychem/storefront/pkg/carousel"
	"github.com/jennychem/storefront/pkg/deferred"
	"github.com/jennychem/storefront/pkg/home"
	"github.com/jennychem/storefront/pkg/storefront"
	"github.com/jennychem/storefront/pkg/viewport"
)

type section int

const (
	sectionProducts section = iota
	sectionArticles
)

// Options configures a Model.
type Options struct {
	// ProductURL resolves a product handle to the URL shown on enter.
	// Defaults to the storefront-relative product path.
	ProductURL func(handle string) string

	// Width seeds the layout before the first resize event.
	Width int
}

type productsSettledMsg struct{ task *deferred.Task[[]storefront.Product] }

type articlesSettledMsg struct{ task *deferred.Task[[]storefront.Article] }

// Model is the homepage view. Carousels exist only once their section is
// ready; until then the section renders its fallback.
type Model struct {
	page       *home.Page
	productURL func(string) string

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	tracker *viewport.Tracker

	focus    section
	products *carousel.Carousel[home.ProductCard]
	articles *carousel.Carousel[home.ArticleCard]
	opened   string
	width    int
	quitting bool
}

// New returns a model over page.
func New(page *home.Page, opts Options) Model {
	if opts.ProductURL == nil {
		opts.ProductURL = home.ProductPath
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleAccent

	return Model{
		page:       page,
		productURL: opts.ProductURL,
		keys:       newKeyMap(),
		help:       help.New(),
		spinner:    sp,
		tracker:    viewport.NewTracker(viewport.Terminal(), opts.Width),
		width:      opts.Width,
	}
}

// Run shows the homepage until the user quits or ctx ends. Pending sections
// are cancelled on exit.
func Run(ctx context.Context, page *home.Page, opts Options, progOpts ...tea.ProgramOption) error {
	defer page.Close()
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, progOpts...)
	_, err := tea.NewProgram(New(page, opts), progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitProducts(m.page.Products()),
		waitArticles(m.page.Articles()),
	)
}

func waitProducts(t *deferred.Task[[]storefront.Product]) tea.Cmd {
	return func() tea.Msg {
		<-t.Done()
		return productsSettledMsg{task: t}
	}
}

func waitArticles(t *deferred.Task[[]storefront.Article]) tea.Cmd {
	return func() tea.Msg {
		<-t.Done()
		return articlesSettledMsg{task: t}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		if mode, changed := m.tracker.Observe(msg.Width); changed {
			m.applyLayout(mode)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case productsSettledMsg:
		// A retry replaces the task; results of the old one are stale.
		if msg.task != m.page.Products() {
			return m, nil
		}
		if s := msg.task.State(); s.IsReady() {
			m.products = home.ProductCarousel(s.Value, m.tracker.Mode(), 0)
		}
		return m, nil

	case articlesSettledMsg:
		if msg.task != m.page.Articles() {
			return m, nil
		}
		if s := msg.task.State(); s.IsReady() {
			m.articles = home.ArticleCarousel(s.Value, m.tracker.Mode(), 0)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.page.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Switch):
		if m.focus == sectionProducts {
			m.focus = sectionArticles
		} else {
			m.focus = sectionProducts
		}
		m.opened = ""

	case key.Matches(msg, m.keys.Next):
		m.step(true)

	case key.Matches(msg, m.keys.Prev):
		m.step(false)

	case key.Matches(msg, m.keys.Open):
		if m.focus == sectionProducts && m.products != nil && m.products.Len() > 0 {
			card := m.products.Items()[m.products.Index()]
			m.opened = m.productURL(card.Handle)
		}

	case key.Matches(msg, m.keys.Retry):
		return m.retry()
	}
	return m, nil
}

// step moves the focused carousel. Navigation on a section that is not ready
// is ignored.
func (m *Model) step(forward bool) {
	var moved bool
	switch {
	case m.focus == sectionProducts && m.products != nil:
		moved = move(m.products, forward)
	case m.focus == sectionArticles && m.articles != nil:
		moved = move(m.articles, forward)
	}
	if moved {
		m.opened = ""
	}
}

func move[T any](c *carousel.Carousel[T], forward bool) bool {
	if forward {
		return c.Next()
	}
	return c.Prev()
}

// retry restarts the focused section if it failed.
func (m Model) retry() (tea.Model, tea.Cmd) {
	switch m.focus {
	case sectionProducts:
		if !m.page.Products().State().IsFailed() {
			return m, nil
		}
		m.products = nil
		return m, tea.Batch(waitProducts(m.page.RetryProducts()), m.spinner.Tick)
	case sectionArticles:
		if !m.page.Articles().State().IsFailed() {
			return m, nil
		}
		m.articles = nil
		return m, tea.Batch(waitArticles(m.page.RetryArticles()), m.spinner.Tick)
	}
	return m, nil
}

func (m *Model) applyLayout(mode viewport.Mode) {
	if m.products != nil {
		m.products.SetSlots(home.Slots(home.SectionProducts, mode))
	}
	if m.articles != nil {
		m.articles.SetSlots(home.Slots(home.SectionArticles, mode))
	}
}

func (m Model) loading() bool {
	return m.page.Products().State().IsPending() || m.page.Articles().State().IsPending()
}
