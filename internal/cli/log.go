// Package cli implements the storefront command-line interface.
//
// The root command loads configuration from a TOML file and STOREFRONT_*
// environment variables, then runs one of:
//   - home: the interactive terminal homepage
//   - serve: the HTTP homepage
//   - products, articles: print one section as a table
//   - cache: inspect, clear or warm the response cache
//   - config: show the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context with log.WithContext, so library code picks
// it up with log.FromContext. In verbose mode section loads, cache lookups and
// API calls are logged through the observability hooks.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jennychem/storefront/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Loaded 8 products (412ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Observability
// =============================================================================

// logHooks reports observability events as debug log lines. Events use the
// logger carried by the context when there is one.
type logHooks struct {
	fallback *log.Logger
}

var (
	_ observability.LoadHooks  = logHooks{}
	_ observability.CacheHooks = logHooks{}
	_ observability.HTTPHooks  = logHooks{}
)

// registerHooks routes all observability events to l.
func registerHooks(l *log.Logger) {
	h := logHooks{fallback: l}
	observability.SetLoadHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) logger(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(log.ContextKey).(*log.Logger); ok && l != nil {
		return l
	}
	return h.fallback
}

func (h logHooks) OnLoadStart(ctx context.Context, section string) {
	h.logger(ctx).Debug("section loading", "section", section)
}

func (h logHooks) OnLoadComplete(ctx context.Context, section string, items int, d time.Duration, err error) {
	if err != nil {
		h.logger(ctx).Debug("section failed", "section", section, "elapsed", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger(ctx).Debug("section loaded", "section", section, "items", items, "elapsed", d.Round(time.Millisecond))
}

func (h logHooks) OnCacheHit(ctx context.Context, operation string) {
	h.logger(ctx).Debug("cache hit", "op", operation)
}

func (h logHooks) OnCacheMiss(ctx context.Context, operation string) {
	h.logger(ctx).Debug("cache miss", "op", operation)
}

func (h logHooks) OnCacheSet(ctx context.Context, operation string, size int) {
	h.logger(ctx).Debug("cache set", "op", operation, "bytes", size)
}

func (h logHooks) OnRequest(ctx context.Context, method, host, path string) {
	h.logger(ctx).Debug("request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration) {
	h.logger(ctx).Debug("response", "method", method, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h logHooks) OnError(ctx context.Context, method, host, path string, err error) {
	h.logger(ctx).Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}
