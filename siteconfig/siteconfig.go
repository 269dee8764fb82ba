// Package siteconfig resolves a tenant identifier into the immutable,
// request-scoped configuration every page render and derived artifact uses.
package siteconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/nisimpson/tenantmap"
	"github.com/nisimpson/tenantmap/countrypack"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/nisimpson/tenantmap/siteconfig"

// ErrNotFound is returned when the tenant has no configuration record.
var ErrNotFound = tenantmap.ErrNotFound

// TenantReader loads tenant configuration records.
type TenantReader interface {
	GetTenantConfig(ctx context.Context, tenantID string) (*tenantmap.Tenant, error)
}

// ResolvedSiteConfig is the merge of a tenant record and its country pack.
// It is either fully populated or not returned at all, and it cannot be
// changed after construction: accessors return copies.
type ResolvedSiteConfig struct {
	tenantID    string
	name        string
	domain      string
	status      tenantmap.Status
	theme       tenantmap.Theme
	countryCode string
	locale      string
	pack        countrypack.Pack
}

func (c *ResolvedSiteConfig) TenantID() string         { return c.tenantID }
func (c *ResolvedSiteConfig) Name() string             { return c.name }
func (c *ResolvedSiteConfig) Domain() string           { return c.domain }
func (c *ResolvedSiteConfig) Status() tenantmap.Status { return c.status }

// CountryCode is the code of the pack actually applied, which is the registry
// default when the tenant's own code is missing or unsupported.
func (c *ResolvedSiteConfig) CountryCode() string { return c.countryCode }

// Locale is the tenant's locale override, or the pack's locale.
func (c *ResolvedSiteConfig) Locale() string { return c.locale }

// Theme returns a copy of the tenant theme in source order.
func (c *ResolvedSiteConfig) Theme() tenantmap.Theme { return c.theme.Clone() }

// Pack returns a copy of the applied country pack.
func (c *ResolvedSiteConfig) Pack() countrypack.Pack {
	p := c.pack
	p.Address = p.AddressFields()
	return p
}

// IsPublic reports whether the site may be served publicly.
func (c *ResolvedSiteConfig) IsPublic() bool { return c.status.IsPublic() }

// Indexable reports whether crawlers may index the site. A nil config is
// never indexable.
func (c *ResolvedSiteConfig) Indexable() bool {
	return c != nil && c.IsPublic()
}

// View is the JSON form of a ResolvedSiteConfig.
type View struct {
	TenantID    string           `json:"tenantId"`
	Name        string           `json:"name,omitempty"`
	Domain      string           `json:"domain"`
	Status      tenantmap.Status `json:"status"`
	Public      bool             `json:"public"`
	Theme       tenantmap.Theme  `json:"theme,omitempty"`
	CountryCode string           `json:"countryCode"`
	Locale      string           `json:"locale"`
	Pack        countrypack.Pack `json:"pack"`
}

// View returns a serializable snapshot of c.
func (c *ResolvedSiteConfig) View() View {
	return View{
		TenantID:    c.tenantID,
		Name:        c.name,
		Domain:      c.domain,
		Status:      c.status,
		Public:      c.IsPublic(),
		Theme:       c.Theme(),
		CountryCode: c.countryCode,
		Locale:      c.locale,
		Pack:        c.Pack(),
	}
}

// Resolver builds a ResolvedSiteConfig per request. It keeps no state between
// calls beyond the read-only registry.
type Resolver struct {
	tenants  TenantReader
	registry *countrypack.Registry
	tracer   trace.Tracer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTracerProvider sets the tracer provider used for resolve spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Resolver) {
		r.tracer = tp.Tracer(tracerName)
	}
}

// NewResolver returns a Resolver reading tenants from tenants and packs from
// registry.
func NewResolver(tenants TenantReader, registry *countrypack.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		tenants:  tenants,
		registry: registry,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve loads tenantID and merges it with its country pack. It returns
// ErrNotFound for an unknown tenant; store failures are returned wrapped so
// errors.Is(err, tenantmap.ErrStoreUnavailable) still holds.
func (r *Resolver) Resolve(ctx context.Context, tenantID string) (*ResolvedSiteConfig, error) {
	ctx, span := r.tracer.Start(ctx, "siteconfig.Resolve",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)))
	defer span.End()

	cfg, err := r.resolve(ctx, tenantID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if cfg != nil {
		span.SetAttributes(
			attribute.String("tenant.status", string(cfg.status)),
			attribute.String("tenant.country", cfg.countryCode),
		)
	}
	return cfg, err
}

func (r *Resolver) resolve(ctx context.Context, tenantID string) (*ResolvedSiteConfig, error) {
	tenant, err := r.tenants.GetTenantConfig(ctx, tenantID)
	if errors.Is(err, tenantmap.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tenant %q: %w", tenantID, err)
	}

	return Merge(tenant, r.registry), nil
}

// Merge builds the resolved configuration of tenant with the pack registry
// selects for its country code. Tenant fields win where both define a value.
func Merge(tenant *tenantmap.Tenant, registry *countrypack.Registry) *ResolvedSiteConfig {
	code := registry.Resolve(tenant.CountryCode)
	pack := registry.Pack(code)

	locale := pack.Locale
	if tenant.Locale != "" {
		locale = tenant.Locale
	}

	return &ResolvedSiteConfig{
		tenantID:    tenant.ID,
		name:        tenant.Name,
		domain:      tenant.Domain,
		status:      tenant.Status,
		theme:       tenant.Theme.Clone(),
		countryCode: code,
		locale:      locale,
		pack:        pack,
	}
}
