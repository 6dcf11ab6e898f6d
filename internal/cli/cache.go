package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jennychem/storefront/pkg/cache"
	"github.com/jennychem/storefront/pkg/home"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the Storefront API response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheWarmCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := cache.Open(cmd.Context(), c.cfg.CacheConfig())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				printWarning("The %s cache cannot be cleared", c.backend())
				return nil
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", c.backend())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where cached responses are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.backend() {
			case cache.BackendRedis:
				fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d %s*\n", c.cfg.Cache.Redis.Addr, c.cfg.Cache.Redis.DB, c.cfg.Cache.Redis.Prefix)
			case cache.BackendMongo:
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s.%s\n", c.cfg.Redacted().Cache.Mongo.URI, c.cfg.Cache.Mongo.Database, c.cfg.Cache.Mongo.Collection)
			case cache.BackendNone:
				printInfo("Caching is disabled")
			default:
				fmt.Fprintln(cmd.OutOrStdout(), c.cacheDir())
			}
			return nil
		},
	}
}

// cacheWarmCommand creates the "cache warm" subcommand.
func (c *CLI) cacheWarmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "warm",
		Short: "Fetch both homepage sections and store fresh responses",
		Long: `Fetch both homepage sections and store fresh responses.

Run this before starting a server so the first visitors get cached sections.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.noCache {
				printWarning("Nothing to warm with --no-cache")
				return nil
			}
			ctx := cmd.Context()
			client, cc, err := c.newClient(ctx)
			if err != nil {
				return err
			}
			defer cc.Close()

			spin := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Warming cache...")
			spin.Start()
			stats, err := home.Prefetch(ctx, client)
			if err != nil {
				spin.StopWithError("Warming failed")
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("Cached %d products and %d articles", stats.Products, stats.Articles))
			printDetail("Backend: %s", c.backend())
			return nil
		},
	}
}

func (c *CLI) backend() string {
	if c.cfg.Cache.Backend == "" {
		return cache.BackendFile
	}
	return c.cfg.Cache.Backend
}
