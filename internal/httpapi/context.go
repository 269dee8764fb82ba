package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/nisimpson/tenantmap"
	"github.com/nisimpson/tenantmap/contextquery"
)

func (s *Server) handleContext(tenantOf func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := strings.TrimSpace(tenantOf(r))
		if tenantID == "" {
			writeError(w, http.StatusBadRequest, "missing tenant id")
			return
		}

		req, msg := parseContextRequest(r)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		page, err := retryOnce(r.Context(), s, func() (*contextquery.Page, error) {
			return s.contexts.List(r.Context(), tenantID, req)
		})
		if err != nil {
			s.writeContextError(w, r, tenantID, err)
			return
		}

		writeJSON(w, http.StatusOK, page)
	}
}

func parseContextRequest(r *http.Request) (contextquery.Request, string) {
	q := r.URL.Query()
	req := contextquery.Request{
		Cursor: q.Get("cursor"),
		Prefix: q.Get("prefix"),
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return req, "invalid limit"
		}
		req.Limit = limit
	}

	if req.Prefix != "" && !strings.HasPrefix(req.Prefix, tenantmap.ContextPrefix+tenantmap.DefaultKeyDelimiter) {
		return req, "invalid prefix"
	}

	return req, ""
}

// writeContextError answers with a sanitized message; the full error is only
// logged.
func (s *Server) writeContextError(w http.ResponseWriter, r *http.Request, tenantID string, err error) {
	log := s.log.With("request_id", GetRequestID(r.Context()), "tenant", tenantID, "err", err)

	switch {
	case errors.Is(err, tenantmap.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, "invalid cursor")
	case errors.Is(err, tenantmap.ErrNotFound):
		writeError(w, http.StatusNotFound, "tenant not found")
	case tenantmap.IsTransient(err):
		log.Warnw("context listing failed")
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
	case errors.Is(err, tenantmap.ErrInvalidKeyScheme):
		log.Errorw("context listing hit a malformed record")
		writeError(w, http.StatusInternalServerError, msgInternal)
	default:
		log.Errorw("context listing failed")
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
