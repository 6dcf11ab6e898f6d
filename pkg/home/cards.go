package home

import (
	"net/url"
	"time"

	"github.com/jennychem/storefront/pkg/carousel"
	"github.com/jennychem/storefront/pkg/storefront"
	"github.com/jennychem/storefront/pkg/viewport"
)

// ViewAllSizes is the label of the product card action.
const ViewAllSizes = "VIEW ALL SIZES"

// CarouselSkip is how far both homepage carousels move per step.
const CarouselSkip = 2

// ProductCard is the view model of one best seller.
type ProductCard struct {
	ID     string
	Title  string
	Handle string
	Price  string
	Image  *storefront.Image
	Action Link
}

// NewProductCard builds the card for p. The action links to the product page.
func NewProductCard(p storefront.Product) ProductCard {
	card := ProductCard{
		ID:     p.ID,
		Title:  p.Title,
		Handle: p.Handle,
		Price:  p.Price.String(),
		Action: Link{Label: ViewAllSizes, Href: ProductPath(p.Handle)},
	}
	if img, ok := p.FeaturedImage(); ok {
		card.Image = &img
	}
	return card
}

// ProductPath returns the storefront-relative path of a product page.
func ProductPath(handle string) string {
	return "/products/" + url.PathEscape(handle)
}

// ArticleCard is the view model of one tip.
type ArticleCard struct {
	ID        string
	Title     string
	Published time.Time
	Image     *storefront.Image
	Excerpt   string
}

// NewArticleCard builds the card for a.
func NewArticleCard(a storefront.Article) ArticleCard {
	return ArticleCard{
		ID:        a.ID,
		Title:     a.Title,
		Published: a.PublishedAt,
		Image:     a.Image,
		Excerpt:   a.Excerpt,
	}
}

// Date formats the publication date, e.g. "1 March 2024".
func (c ArticleCard) Date() string {
	if c.Published.IsZero() {
		return ""
	}
	return c.Published.Format("2 January 2006")
}

// Slots returns how many cards a section shows at once in mode.
func Slots(section string, mode viewport.Mode) int {
	if mode == viewport.Mobile {
		return 1
	}
	if section == SectionArticles {
		return 4
	}
	return 5
}

// ProductCarousel returns a best sellers carousel positioned at start.
func ProductCarousel(products []storefront.Product, mode viewport.Mode, start int) *carousel.Carousel[ProductCard] {
	cards := make([]ProductCard, len(products))
	for i, p := range products {
		cards[i] = NewProductCard(p)
	}
	return carousel.New(cards,
		carousel.WithSkip(CarouselSkip),
		carousel.WithSlots(Slots(SectionProducts, mode)),
		carousel.WithStart(start),
	)
}

// ArticleCarousel returns a tips carousel positioned at start.
func ArticleCarousel(articles []storefront.Article, mode viewport.Mode, start int) *carousel.Carousel[ArticleCard] {
	cards := make([]ArticleCard, len(articles))
	for i, a := range articles {
		cards[i] = NewArticleCard(a)
	}
	return carousel.New(cards,
		carousel.WithSkip(CarouselSkip),
		carousel.WithSlots(Slots(SectionArticles, mode)),
		carousel.WithStart(start),
	)
}
