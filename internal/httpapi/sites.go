package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nisimpson/tenantmap"
	"github.com/nisimpson/tenantmap/artifact"
	"github.com/nisimpson/tenantmap/internal/metrics"
	"github.com/nisimpson/tenantmap/siteconfig"
)

const (
	textPlain = "text/plain; charset=utf-8"
	textCSS   = "text/css; charset=utf-8"
	appXML    = "application/xml; charset=utf-8"

	msgSiteNotFound = "site not found"
	msgUnavailable  = "service unavailable"
	msgInternal     = "internal error"
)

// resolve loads the site for the tenant in the path, retrying once when the
// store is unavailable, and records the outcome.
func (s *Server) resolve(r *http.Request) (*siteconfig.ResolvedSiteConfig, error) {
	tenantID := chi.URLParam(r, "tenantID")

	cfg, err := retryOnce(r.Context(), s, func() (*siteconfig.ResolvedSiteConfig, error) {
		return s.sites.Resolve(r.Context(), tenantID)
	})

	result := metrics.ResultOK
	switch {
	case err == nil:
	case errors.Is(err, tenantmap.ErrNotFound):
		result = metrics.ResultNotFound
	case tenantmap.IsTransient(err):
		result = metrics.ResultUnavailable
		s.log.Warnw("site resolution failed",
			"request_id", GetRequestID(r.Context()), "tenant", tenantID, "err", err)
	default:
		result = metrics.ResultError
		s.log.Errorw("site resolution failed",
			"request_id", GetRequestID(r.Context()), "tenant", tenantID, "err", err)
	}
	metrics.ResolveTotal.WithLabelValues(result).Inc()

	return cfg, err
}

// publicStatus maps a resolution error to a status code and a generic body.
// Store error text never reaches public responses.
func publicStatus(err error) (int, string) {
	switch {
	case errors.Is(err, tenantmap.ErrNotFound):
		return http.StatusNotFound, msgSiteNotFound
	case tenantmap.IsTransient(err):
		return http.StatusServiceUnavailable, msgUnavailable
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.resolve(r)
	if errors.Is(err, tenantmap.ErrNotFound) {
		writeText(w, http.StatusNotFound, textPlain, artifact.Robots(nil))
		return
	}
	if err != nil {
		status, msg := publicStatus(err)
		writeText(w, status, textPlain, msg)
		return
	}
	writeText(w, http.StatusOK, textPlain, artifact.Robots(cfg))
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.resolve(r)
	if err != nil {
		status, msg := publicStatus(err)
		writeText(w, status, textPlain, msg)
		return
	}
	writeText(w, http.StatusOK, textCSS, artifact.ThemeStylesheet(cfg))
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.resolve(r)
	if err != nil {
		status, msg := publicStatus(err)
		writeText(w, status, textPlain, msg)
		return
	}
	if !cfg.Indexable() || cfg.Domain() == "" {
		writeText(w, http.StatusNotFound, textPlain, msgSiteNotFound)
		return
	}

	entries, err := retryOnce(r.Context(), s, func() ([]tenantmap.ContextEntry, error) {
		return s.contexts.All(r.Context(), cfg.TenantID(), "", s.opts.SitemapPages)
	})
	if err != nil {
		s.log.Warnw("sitemap listing failed",
			"request_id", GetRequestID(r.Context()), "tenant", cfg.TenantID(), "err", err)
		status, msg := publicStatus(err)
		writeText(w, status, textPlain, msg)
		return
	}

	body, err := artifact.Sitemap(cfg, artifact.SitemapPaths(entries))
	if err != nil {
		s.log.Errorw("sitemap render failed",
			"request_id", GetRequestID(r.Context()), "tenant", cfg.TenantID(), "err", err)
		writeText(w, http.StatusInternalServerError, textPlain, msgInternal)
		return
	}
	writeText(w, http.StatusOK, appXML, string(body))
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.resolve(r)
	if err != nil {
		status, msg := publicStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, cfg.View())
}
