// Package contextquery lists a tenant's context entries page by page. Every
// listing is a range query on the requesting tenant's partition; there is no
// way to ask for another tenant's entries.
package contextquery

import (
	"context"
	"fmt"

	"github.com/nisimpson/tenantmap"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// ErrNotFound is returned for an empty tenant identifier.
var ErrNotFound = tenantmap.ErrNotFound

// Lister reads one page of context entries.
type Lister interface {
	ListContextEntries(ctx context.Context, tenantID string, opts tenantmap.ListOptions) (*tenantmap.ContextPage, error)
}

// Request selects a page of context entries.
type Request struct {
	Prefix string // Optional sort key prefix, CONTEXT#<something>
	Cursor string // Cursor from a previous Page
	Limit  int    // Page size; 0 means DefaultLimit, capped at MaxLimit
}

// Page is one page of results. NextCursor is empty on the last page.
type Page struct {
	Items      []tenantmap.ContextEntry `json:"items"`
	NextCursor string                   `json:"nextCursor"`
}

// Service lists context entries.
type Service struct {
	lister Lister
}

// New returns a Service backed by lister.
func New(lister Lister) *Service {
	return &Service{lister: lister}
}

// List returns one page of tenantID's context entries. Store failures are
// returned unchanged for the caller to retry.
func (s *Service) List(ctx context.Context, tenantID string, req Request) (*Page, error) {
	if tenantID == "" {
		return nil, ErrNotFound
	}

	result, err := s.lister.ListContextEntries(ctx, tenantID, tenantmap.ListOptions{
		Prefix: req.Prefix,
		Cursor: req.Cursor,
		Limit:  ClampLimit(req.Limit),
	})
	if err != nil {
		return nil, err
	}

	items := result.Items
	if items == nil {
		items = []tenantmap.ContextEntry{}
	}
	return &Page{Items: items, NextCursor: result.NextCursor}, nil
}

// All follows cursors until the listing is exhausted or maxPages pages have
// been read. maxPages <= 0 means no bound.
func (s *Service) All(ctx context.Context, tenantID, prefix string, maxPages int) ([]tenantmap.ContextEntry, error) {
	var (
		entries []tenantmap.ContextEntry
		cursor  string
	)

	for pages := 0; maxPages <= 0 || pages < maxPages; pages++ {
		page, err := s.List(ctx, tenantID, Request{Prefix: prefix, Cursor: cursor, Limit: MaxLimit})
		if err != nil {
			return nil, fmt.Errorf("failed to list page %d: %w", pages, err)
		}
		entries = append(entries, page.Items...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return entries, nil
}

// ClampLimit maps a requested page size into [1, MaxLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
