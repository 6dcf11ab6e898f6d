// Package config loads storefront settings from a TOML file and STOREFRONT_*
// environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment. Command-line flags are applied by the caller afterwards.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"

	"github.com/jennychem/storefront/pkg/cache"
	sferrors "github.com/jennychem/storefront/pkg/errors"
	"github.com/jennychem/storefront/pkg/home"
	"github.com/jennychem/storefront/pkg/storefront"
)

const (
	appName  = "storefront"
	fileName = "config.toml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "STOREFRONT_"
)

// Shop identifies the storefront and how it is queried.
type Shop struct {
	Domain       string `toml:"domain" env:"DOMAIN"`
	Token        string `toml:"token" env:"TOKEN"`
	APIVersion   string `toml:"api_version" env:"API_VERSION"`
	Country      string `toml:"country" env:"COUNTRY"`
	Language     string `toml:"language" env:"LANGUAGE"`
	BlogHandle   string `toml:"blog" env:"BLOG"`
	ProductCount int    `toml:"product_count" env:"PRODUCT_COUNT"`
	ArticleCount int    `toml:"article_count" env:"ARTICLE_COUNT"`
}

// Redis configures the redis cache backend.
type Redis struct {
	Addr     string `toml:"addr" env:"ADDR"`
	Password string `toml:"password" env:"PASSWORD"`
	DB       int    `toml:"db" env:"DB"`
	Prefix   string `toml:"prefix" env:"PREFIX"`
}

// Mongo configures the mongo cache backend.
type Mongo struct {
	URI        string `toml:"uri" env:"URI"`
	Database   string `toml:"database" env:"DATABASE"`
	Collection string `toml:"collection" env:"COLLECTION"`
}

// Cache selects the response cache.
type Cache struct {
	Backend string        `toml:"backend" env:"BACKEND"`
	Dir     string        `toml:"dir" env:"DIR"`
	TTL     time.Duration `toml:"ttl" env:"TTL"`
	Redis   Redis         `toml:"redis" envPrefix:"REDIS_"`
	Mongo   Mongo         `toml:"mongo" envPrefix:"MONGO_"`
}

// Server configures the HTTP front end.
type Server struct {
	Addr          string        `toml:"addr" env:"ADDR"`
	RenderTimeout time.Duration `toml:"render_timeout" env:"RENDER_TIMEOUT"`
	RefreshAfter  time.Duration `toml:"refresh_after" env:"REFRESH_AFTER"`
	FetchTimeout  time.Duration `toml:"fetch_timeout" env:"FETCH_TIMEOUT"`
}

// Config is the full storefront configuration.
type Config struct {
	Shop    Shop         `toml:"shop"`
	Cache   Cache        `toml:"cache"`
	Server  Server       `toml:"server"`
	Content home.Content `toml:"content"`

	// Path is the file the config was read from, empty if none.
	Path string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Shop: Shop{
			APIVersion:   storefront.DefaultAPIVersion,
			BlogHandle:   storefront.DefaultBlogHandle,
			ProductCount: storefront.DefaultProductCount,
			ArticleCount: storefront.DefaultArticleCount,
		},
		Cache: Cache{
			Backend: cache.BackendFile,
			Dir:     DefaultCacheDir(),
			TTL:     storefront.DefaultTTL,
			Redis:   Redis{Addr: "localhost:6379", Prefix: cache.DefaultRedisPrefix},
			Mongo: Mongo{
				URI:        "mongodb://localhost:27017",
				Database:   cache.DefaultMongoDatabase,
				Collection: cache.DefaultMongoCollection,
			},
		},
		Server: Server{
			Addr:          ":8080",
			RenderTimeout: 300 * time.Millisecond,
			RefreshAfter:  2 * time.Second,
			FetchTimeout:  30 * time.Second,
		},
		Content: home.DefaultContent(),
	}
}

// Load reads the configuration. If path is empty, STOREFRONT_CONFIG and then
// DefaultPath are tried, and a missing file there is not an error. An explicit
// path must exist.
func Load(path string) (Config, error) {
	return load(path, nil)
}

// load is Load with an injectable environment; a nil environ means os.Environ.
func load(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p := lookup(environ, EnvPrefix+"CONFIG"); p != "" {
			path, explicit = p, true
		} else {
			path = DefaultPath()
		}
	}

	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			err = decode(f, &cfg)
			f.Close()
			if err != nil {
				return cfg, sferrors.Wrap(sferrors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
			cfg.Path = path
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			log.Debug("no config file", "path", path)
		default:
			return cfg, sferrors.Wrap(sferrors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	if err := applyEnv(&cfg, environ); err != nil {
		return cfg, sferrors.Wrap(sferrors.ErrCodeInvalidConfig, err, "environment overrides")
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// applyEnv overlays STOREFRONT_* variables. Content is file-only.
func applyEnv(cfg *Config, environ map[string]string) error {
	targets := []struct {
		prefix string
		v      any
	}{
		{EnvPrefix + "SHOP_", &cfg.Shop},
		{EnvPrefix + "CACHE_", &cfg.Cache},
		{EnvPrefix + "SERVER_", &cfg.Server},
	}
	for _, t := range targets {
		opts := env.Options{Prefix: t.prefix, Environment: environ}
		if err := env.ParseWithOptions(t.v, opts); err != nil {
			return err
		}
	}
	return nil
}

func lookup(environ map[string]string, key string) string {
	if environ != nil {
		return environ[key]
	}
	return os.Getenv(key)
}

// Validate checks the settings needed to query the storefront.
func (c Config) Validate() error {
	if err := sferrors.ValidateShopDomain(c.Shop.Domain); err != nil {
		return err
	}
	if err := sferrors.ValidateAPIVersion(c.Shop.APIVersion); err != nil {
		return err
	}
	if c.Shop.BlogHandle != "" {
		if err := sferrors.ValidateHandle(c.Shop.BlogHandle); err != nil {
			return err
		}
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return sferrors.New(sferrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return sferrors.New(sferrors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Server.RenderTimeout < 0 || c.Server.RefreshAfter < 0 || c.Server.FetchTimeout < 0 {
		return sferrors.New(sferrors.ErrCodeInvalidConfig, "server timeouts must not be negative")
	}
	return validateContent(c.Content)
}

// validateContent checks every configured href and image source. Empty
// values are left to the templates.
func validateContent(content home.Content) error {
	links := map[string]string{
		"content.hero.cta.href":         content.Hero.CTA.Href,
		"content.hero.background_image": content.Hero.BackgroundImage,
		"content.social.featured":       content.Social.Featured,
		"content.story.image":           content.Story.Image,
		"content.story.cta.href":        content.Story.CTA.Href,
	}
	for i, l := range content.Social.Links {
		links[fmt.Sprintf("content.social.links[%d].href", i)] = l.Href
	}
	for i, src := range content.Social.Gallery {
		links[fmt.Sprintf("content.social.gallery[%d]", i)] = src
	}

	fields := make([]string, 0, len(links))
	for field := range links {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if links[field] == "" {
			continue
		}
		if err := sferrors.ValidateLink(links[field]); err != nil {
			return sferrors.Wrap(sferrors.ErrCodeInvalidConfig, err, "%s", field)
		}
	}
	return nil
}

// ClientOptions maps the shop settings onto storefront client options.
// Cache, HTTP client and logger are left for the caller.
func (c Config) ClientOptions() storefront.Options {
	return storefront.Options{
		Shop:         c.Shop.Domain,
		Token:        c.Shop.Token,
		APIVersion:   c.Shop.APIVersion,
		Country:      c.Shop.Country,
		Language:     c.Shop.Language,
		BlogHandle:   c.Shop.BlogHandle,
		ProductCount: c.Shop.ProductCount,
		ArticleCount: c.Shop.ArticleCount,
		TTL:          c.Cache.TTL,
	}
}

// CacheConfig maps the cache settings onto cache.Open's config.
func (c Config) CacheConfig() cache.Config {
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
			Prefix:   c.Cache.Redis.Prefix,
		},
		Mongo: cache.MongoConfig{
			URI:        c.Cache.Mongo.URI,
			Database:   c.Cache.Mongo.Database,
			Collection: c.Cache.Mongo.Collection,
		},
	}
}

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Shop.Token = mask(c.Shop.Token)
	c.Cache.Redis.Password = mask(c.Cache.Redis.Password)
	if strings.Contains(c.Cache.Mongo.URI, "@") {
		c.Cache.Mongo.URI = mask(c.Cache.Mongo.URI)
	}
	return c
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// DefaultPath returns $XDG_CONFIG_HOME/storefront/config.toml, or "" if no
// config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, fileName)
}

// DefaultCacheDir returns the file cache directory using the XDG standard
// (~/.cache/storefront/).
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(dir, appName)
}
