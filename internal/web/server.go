// Package web serves the storefront homepage over HTTP.
//
// Pages are rendered on the server. Each section waits for its data up to the
// configured render timeout; a section still loading after that renders its
// fallback and the page refreshes itself. The fetch keeps running after the
// request ends, so the refreshed page finds the data in the response cache.
// Carousel positions travel in the query string, so navigation is plain links.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jennychem/storefront/pkg/home"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Defaults applied by New.
const (
	DefaultRenderTimeout = 300 * time.Millisecond
	DefaultRefreshAfter  = 2 * time.Second
	DefaultFetchTimeout  = 30 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Source  home.Source
	Content home.Content

	// ProductURL resolves a product handle to the shop's product page.
	ProductURL func(handle string) string

	RenderTimeout time.Duration
	RefreshAfter  time.Duration
	// FetchTimeout bounds a section fetch, which outlives the request that
	// started it.
	FetchTimeout time.Duration
	Logger       *log.Logger
}

// Server is the homepage HTTP front end.
type Server struct {
	source        *sharedSource
	content       home.Content
	productURL    func(string) string
	renderTimeout time.Duration
	refreshAfter  time.Duration
	logger        *log.Logger
	tmpl          *template.Template
	router        chi.Router
}

// New creates a Server. It panics if the embedded templates do not parse.
func New(opts Options) *Server {
	if opts.ProductURL == nil {
		opts.ProductURL = home.ProductPath
	}
	if opts.RenderTimeout <= 0 {
		opts.RenderTimeout = DefaultRenderTimeout
	}
	if opts.RefreshAfter <= 0 {
		opts.RefreshAfter = DefaultRefreshAfter
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Content.Title == "" {
		opts.Content = home.DefaultContent()
	}

	s := &Server{
		source:        newSharedSource(opts.Source, opts.FetchTimeout),
		content:       opts.Content,
		productURL:    opts.ProductURL,
		renderTimeout: opts.RenderTimeout,
		refreshAfter:  opts.RefreshAfter,
		logger:        opts.Logger,
		tmpl:          template.Must(template.ParseFS(templateFS, "templates/*.tmpl")),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestContext(s.logger))
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleHome)
	r.Get("/products/{handle}", s.handleProduct)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
// Section fetches still running after shutdown are cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	defer s.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close cancels section fetches that are still running.
func (s *Server) Close() {
	s.source.Close()
}
