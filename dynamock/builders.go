package dynamock

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/tenantmap"
)

// TenantOption is a functional option for configuring tenants during building.
type TenantOption func(*tenantmap.Tenant)

// NewTenant returns a LIVE tenant on <id>.example with the given options applied.
func NewTenant(id string, opts ...TenantOption) *tenantmap.Tenant {
	tenant := &tenantmap.Tenant{
		ID:     id,
		Domain: id + ".example",
		Status: tenantmap.StatusLive,
	}
	for _, opt := range opts {
		opt(tenant)
	}
	return tenant
}

// WithDomain sets the tenant domain.
func WithDomain(domain string) TenantOption {
	return func(t *tenantmap.Tenant) {
		t.Domain = domain
	}
}

// WithStatus sets the publish status.
func WithStatus(status tenantmap.Status) TenantOption {
	return func(t *tenantmap.Tenant) {
		t.Status = status
	}
}

// WithCountry sets the country code.
func WithCountry(code string) TenantOption {
	return func(t *tenantmap.Tenant) {
		t.CountryCode = code
	}
}

// WithLocale sets the locale override.
func WithLocale(locale string) TenantOption {
	return func(t *tenantmap.Tenant) {
		t.Locale = locale
	}
}

// WithTheme appends theme variables given as name, value pairs.
func WithTheme(pairs ...string) TenantOption {
	return func(t *tenantmap.Tenant) {
		for i := 0; i+1 < len(pairs); i += 2 {
			t.Theme = t.Theme.Set(pairs[i], pairs[i+1])
		}
	}
}

// WithCreated sets the creation timestamp.
func WithCreated(created time.Time) TenantOption {
	return func(t *tenantmap.Tenant) {
		t.CreatedAt = created
	}
}

// NewContextEntries returns n entries for tenantID with ids entry-000,
// entry-001 and so on. Each payload carries its tenant and index.
func NewContextEntries(tenantID string, n int) []tenantmap.Marshaler {
	entries := make([]tenantmap.Marshaler, 0, n)
	for i := range n {
		entries = append(entries, &tenantmap.ContextEntry{
			TenantID: tenantID,
			ID:       fmt.Sprintf("entry-%03d", i),
			Data:     map[string]any{"tenant": tenantID, "index": i},
		})
	}
	return entries
}

// RawItem builds an item with arbitrary keys, bypassing key validation. It
// is meant for planting malformed records.
func RawItem(pk, sk string, entity tenantmap.EntityType, data any) map[string]types.AttributeValue {
	item, err := attributevalue.MarshalMap(tenantmap.Record{
		PartitionKey: pk,
		SortKey:      sk,
		Entity:       entity,
		Data:         data,
	})
	if err != nil {
		panic(fmt.Sprintf("dynamock: failed to marshal raw item: %v", err))
	}
	return item
}
