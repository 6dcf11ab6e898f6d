package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jennychem/storefront/internal/config"
	"github.com/jennychem/storefront/pkg/buildinfo"
	"github.com/jennychem/storefront/pkg/cache"
	"github.com/jennychem/storefront/pkg/storefront"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "storefront"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	refresh    bool
	logFile    string

	cfg     config.Config
	logSink io.Closer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Storefront renders the JENNYCHEM shop homepage",
		Long:         `Storefront renders the JENNYCHEM shop homepage in the terminal or over HTTP, loading best sellers and tips from the Storefront API with a response cache.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.teardown()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/storefront/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the response cache")
	flags.BoolVar(&c.refresh, "refresh", false, "bypass cached responses and store fresh ones")
	flags.StringVar(&c.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(c.homeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.productsCommand())
	root.AddCommand(c.articlesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration, redirects logs if asked and attaches the logger
// to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		c.logSink = f
		c.Logger.SetOutput(f)
	}
	registerHooks(c.Logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(log.WithContext(ctx, c.Logger))
	return nil
}

func (c *CLI) teardown() {
	if c.logSink != nil {
		c.logSink.Close()
		c.logSink = nil
	}
}

// =============================================================================
// Client Factory
// =============================================================================

// openCache opens the configured response cache, or a null cache with
// --no-cache. A file cache that cannot be created degrades to no cache.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	cc, err := cache.Open(ctx, c.cfg.CacheConfig())
	if err != nil {
		if c.cfg.Cache.Backend == "" || c.cfg.Cache.Backend == cache.BackendFile {
			c.Logger.Warn("file cache unavailable, continuing without cache", "err", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return cc, nil
}

// newClient builds a Storefront API client from the loaded config. The caller
// must close the returned cache.
func (c *CLI) newClient(ctx context.Context) (*storefront.Client, cache.Cache, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cc, err := c.openCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts := c.cfg.ClientOptions()
	opts.Cache = cc
	opts.Logger = c.Logger
	client, err := storefront.NewClient(opts)
	if err != nil {
		cc.Close()
		return nil, nil, err
	}
	return client, cc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, else the XDG
// default (~/.cache/storefront/).
func (c *CLI) cacheDir() string {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir
	}
	return config.DefaultCacheDir()
}

// configFile returns the config file in use, or where one would be read from.
func (c *CLI) configFile() string {
	if c.cfg.Path != "" {
		return c.cfg.Path
	}
	if c.configPath != "" {
		return filepath.Clean(c.configPath)
	}
	return config.DefaultPath()
}
