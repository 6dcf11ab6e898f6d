package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jennychem/storefront/internal/tui"
	"github.com/jennychem/storefront/internal/web"
	"github.com/jennychem/storefront/pkg/home"
	"github.com/jennychem/storefront/pkg/storefront"
)

// homeCommand creates the interactive terminal homepage command.
func (c *CLI) homeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Browse the homepage in the terminal",
		Long: `Browse the homepage in the terminal.

Best sellers and tips load in the background while the rest of the page is
shown. Use tab to switch carousels, the arrow keys to move, enter to open a
product and r to retry a section that failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The TUI owns the terminal; logs only go to --log-file.
			if c.logFile == "" {
				c.Logger.SetOutput(io.Discard)
			}

			ctx := cmd.Context()
			client, cc, err := c.newClient(ctx)
			if err != nil {
				return err
			}
			defer cc.Close()

			page := home.Load(ctx, client,
				home.WithContent(c.cfg.Content),
				home.WithRefresh(c.refresh),
			)
			return tui.Run(ctx, page, tui.Options{ProductURL: client.ProductURL})
		},
	}
}

// serveCommand creates the HTTP homepage command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the homepage over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, cc, err := c.newClient(ctx)
			if err != nil {
				return err
			}
			defer cc.Close()

			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			srv := web.New(web.Options{
				Source:        client,
				Content:       c.cfg.Content,
				ProductURL:    client.ProductURL,
				RenderTimeout: c.cfg.Server.RenderTimeout,
				RefreshAfter:  c.cfg.Server.RefreshAfter,
				FetchTimeout:  c.cfg.Server.FetchTimeout,
				Logger:        c.Logger,
			})
			printInfo("Serving %s on %s", client.Shop(), StyleLink.Render(displayAddr(addr)))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

// productsCommand prints the best sellers section.
func (c *CLI) productsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the best sellers shown on the homepage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, cc, err := c.newClient(ctx)
			if err != nil {
				return err
			}
			defer cc.Close()

			prog := newProgress(c.Logger)
			spin := newSpinnerWithContext(ctx, os.Stderr, "Loading best sellers...")
			spin.Start()
			products, err := client.RecommendedProducts(ctx, c.refresh)
			spin.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded %d products", len(products)))

			if len(products) == 0 {
				printInfo("No products")
				return nil
			}
			fmt.Println(productTable(products, client.ProductURL))
			return nil
		},
	}
}

// articlesCommand prints the tips section.
func (c *CLI) articlesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "articles",
		Short: "List the tips shown on the homepage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, cc, err := c.newClient(ctx)
			if err != nil {
				return err
			}
			defer cc.Close()

			prog := newProgress(c.Logger)
			spin := newSpinnerWithContext(ctx, os.Stderr, "Loading tips...")
			spin.Start()
			articles, err := client.RecommendedArticles(ctx, c.refresh)
			spin.Stop()
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded %d articles", len(articles)))

			if len(articles) == 0 {
				printInfo("No articles")
				return nil
			}
			fmt.Println(articleTable(articles))
			return nil
		},
	}
}

// =============================================================================
// Tables
// =============================================================================

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})
}

func productTable(products []storefront.Product, productURL func(string) string) string {
	t := newTable("#", "Product", "Price", "Link")
	for i, p := range products {
		card := home.NewProductCard(p)
		t.Row(strconv.Itoa(i+1), card.Title, card.Price, productURL(card.Handle))
	}
	return t.Render()
}

func articleTable(articles []storefront.Article) string {
	t := newTable("#", "Title", "Published")
	for i, a := range articles {
		card := home.NewArticleCard(a)
		t.Row(strconv.Itoa(i+1), card.Title, card.Date())
	}
	return t.Render()
}

// displayAddr turns a bare port listen address into something clickable.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
