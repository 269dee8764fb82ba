// Package httpapi serves the public site artifacts and the context listing
// API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nisimpson/tenantmap"
	"github.com/nisimpson/tenantmap/contextquery"
	"github.com/nisimpson/tenantmap/internal/metrics"
	"github.com/nisimpson/tenantmap/siteconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// TenantHeader carries the tenant on /api/context.
const TenantHeader = "X-Tenant-ID"

// SiteResolver resolves a tenant into its site configuration.
type SiteResolver interface {
	Resolve(ctx context.Context, tenantID string) (*siteconfig.ResolvedSiteConfig, error)
}

// ContextLister lists context entries.
type ContextLister interface {
	List(ctx context.Context, tenantID string, req contextquery.Request) (*contextquery.Page, error)
	All(ctx context.Context, tenantID, prefix string, maxPages int) ([]tenantmap.ContextEntry, error)
}

// Options tunes a Server. Zero values pick defaults.
type Options struct {
	Logger         *zap.SugaredLogger
	RequestTimeout time.Duration // default 10s
	RetryBackoff   time.Duration // wait before the single retry; default 100ms
	SitemapPages   int           // maximum listing pages read for a sitemap; default 50
	ServiceName    string        // span name for otelhttp; default "tenantmap"
}

type Server struct {
	Router *chi.Mux

	sites    SiteResolver
	contexts ContextLister
	log      *zap.SugaredLogger
	opts     Options
}

// New builds the router.
func New(sites SiteResolver, contexts ContextLister, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 100 * time.Millisecond
	}
	if opts.SitemapPages <= 0 {
		opts.SitemapPages = 50
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "tenantmap"
	}

	s := &Server{
		Router:   chi.NewRouter(),
		sites:    sites,
		contexts: contexts,
		log:      opts.Logger,
		opts:     opts,
	}

	r := s.Router
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(s.log))
	r.Use(TimeoutMiddleware(opts.RequestTimeout))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, opts.ServiceName)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "text/plain; charset=utf-8", "ok")
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/sites/{tenantID}", func(r chi.Router) {
		r.Get("/robots.txt", s.handleRobots)
		r.Get("/theme.css", s.handleTheme)
		r.Get("/sitemap.xml", s.handleSitemap)
		r.Get("/config", s.handleConfig)
	})

	r.Get("/api/context", s.handleContext(func(r *http.Request) string {
		return r.Header.Get(TenantHeader)
	}))
	r.Get("/api/tenants/{tenantID}/context", s.handleContext(func(r *http.Request) string {
		return chi.URLParam(r, "tenantID")
	}))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is done, then drains in-flight requests for
// at most shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Infow("shutting down server")
	return srv.Shutdown(shutdownCtx)
}

// retryOnce runs fn and, if the store was unavailable, runs it exactly once
// more after the configured backoff. Other errors return immediately.
func retryOnce[T any](ctx context.Context, s *Server, fn func() (T, error)) (T, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.opts.RetryBackoff), 1),
		ctx,
	)

	return backoff.RetryNotifyWithData(func() (T, error) {
		v, err := fn()
		if err != nil && !tenantmap.IsUnavailable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, policy, func(err error, wait time.Duration) {
		metrics.RetriesTotal.Inc()
		s.log.Warnw("store unavailable, retrying",
			"request_id", GetRequestID(ctx),
			"wait", wait,
			"err", err,
		)
	})
}
