package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jennychem/storefront/pkg/carousel"
	"github.com/jennychem/storefront/pkg/deferred"
	sferrors "github.com/jennychem/storefront/pkg/errors"
	"github.com/jennychem/storefront/pkg/home"
	"github.com/jennychem/storefront/pkg/storefront"
	"github.com/jennychem/storefront/pkg/viewport"
)

const (
	cardWidth    = 22
	minCardWidth = 16
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	c := m.page.Content
	mobile := m.tracker.Mode() == viewport.Mobile

	parts := []string{
		m.viewHero(c.Hero),
		m.viewProducts(c.ProductsTitle),
		styleSection.Render(styleHeading.Render("★ "+c.TrustTitle)),
		m.viewSocial(c.Social, mobile),
		m.viewArticles(c.TipsTitle),
		m.viewStory(c.Story),
	}
	if m.opened != "" {
		parts = append(parts, styleSection.Render(styleSuccess.Render(iconArrow+" "+m.opened)))
	}
	parts = append(parts, styleSection.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m Model) viewHero(h home.Hero) string {
	var b strings.Builder
	b.WriteString(styleHeroTitle.Render(h.Title))
	b.WriteString("\n")
	b.WriteString(styleHeroBody.Render(wrap(h.Subtitle, m.textWidth())))
	b.WriteString("\n")
	b.WriteString(styleHeroBody.Render(styleButton.Render(h.CTA.Label + " " + iconArrow)))
	return b.String()
}

func (m Model) heading(title string, s section) string {
	if m.focus == s {
		return styleFocused.Render(iconFocus + " " + title)
	}
	return styleHeading.Render("  " + title)
}

func (m Model) viewProducts(title string) string {
	state := m.page.Products().State()
	body := deferred.Render(state,
		m.fallback,
		func([]storefront.Product) string {
			if m.products == nil {
				return m.fallback()
			}
			return viewCarousel(m.products, m.cardWidth(), m.viewProductCard)
		},
		m.failed,
	)
	return styleSection.Render(m.heading(title, sectionProducts) + "\n" + body)
}

func (m Model) viewArticles(title string) string {
	state := m.page.Articles().State()
	body := deferred.Render(state,
		m.fallback,
		func([]storefront.Article) string {
			if m.articles == nil {
				return m.fallback()
			}
			return viewCarousel(m.articles, m.cardWidth(), viewArticleCard)
		},
		m.failed,
	)
	return styleSection.Render(m.heading(title, sectionArticles) + "\n" + body)
}

func (m Model) fallback() string {
	return m.spinner.View() + " " + styleDim.Render("Loading...")
}

func (m Model) failed(err error) string {
	out := styleError.Render("Couldn't load this section: "+sferrors.UserMessage(err)) + "\n"
	if hint := home.FailureHint(err); hint != "" {
		out += styleDim.Render(hint) + "\n"
	}
	return out + styleDim.Render("press r to try again")
}

// viewCarousel renders the visible cards between prev/next arrows. The card at
// the window's last index is highlighted.
func viewCarousel[T any](c *carousel.Carousel[T], width int, card func(T, int, bool) string) string {
	if c.Len() == 0 {
		return styleDim.Render("Nothing here yet.")
	}
	visible := c.Visible()
	cells := make([]string, 0, len(visible)+2)
	cells = append(cells, styleAccent.Render(iconPrev+" "))
	for i, item := range visible {
		cells = append(cells, card(item, width, i == len(visible)-1))
	}
	cells = append(cells, styleAccent.Render(" "+iconNext))
	return lipgloss.JoinHorizontal(lipgloss.Center, cells...)
}

func (m Model) viewProductCard(p home.ProductCard, width int, selected bool) string {
	style := styleCard
	if selected && m.focus == sectionProducts {
		style = styleCardSelected
	}
	inner := width - 4
	lines := []string{
		styleBody.Render(truncate(p.Title, inner)),
		stylePrice.Render(p.Price),
		styleButton.Render(truncate(p.Action.Label, inner-4) + " " + iconArrow),
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func viewArticleCard(a home.ArticleCard, width int, selected bool) string {
	style := styleCard
	if selected {
		style = styleCardSelected
	}
	inner := width - 4
	lines := []string{
		styleBody.Render(truncate(a.Title, inner)),
		styleDim.Render(a.Date()),
	}
	if a.Excerpt != "" {
		lines = append(lines, styleDim.Render(truncate(a.Excerpt, inner)))
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) viewSocial(s home.Social, mobile bool) string {
	var b strings.Builder
	b.WriteString(styleHeading.Render(s.Title))
	b.WriteString("\n")
	for _, p := range s.Body {
		b.WriteString(styleBody.Render(wrap(p, m.textWidth())))
		b.WriteString("\n")
	}
	links := make([]string, len(s.Links))
	for i, l := range s.Links {
		links[i] = styleAccent.Render(l.Label)
	}
	b.WriteString(strings.Join(links, styleDim.Render(" · ")))
	if !mobile {
		b.WriteString("\n")
		b.WriteString(styleDim.Render(fmt.Sprintf("%d photos tagged %s", len(s.Gallery), s.Hashtag)))
	}
	return styleSection.Render(b.String())
}

func (m Model) viewStory(s home.Story) string {
	var b strings.Builder
	b.WriteString(styleHeading.Render(s.Title))
	b.WriteString("\n")
	for _, p := range s.Body {
		b.WriteString(styleBody.Render(wrap(p, m.textWidth())))
		b.WriteString("\n")
	}
	b.WriteString(styleButton.Render(s.CTA.Label + " " + iconArrow))
	return styleSection.Render(b.String())
}

// cardWidth fits the desktop slot count into the terminal when possible.
func (m Model) cardWidth() int {
	if m.tracker.Mode() == viewport.Mobile {
		return max(m.width-10, minCardWidth)
	}
	slots := home.Slots(home.SectionProducts, viewport.Desktop)
	if m.width <= 0 {
		return cardWidth
	}
	return max(min((m.width-10)/slots, cardWidth+8), minCardWidth)
}

func (m Model) textWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(m.width-6, 20)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}
