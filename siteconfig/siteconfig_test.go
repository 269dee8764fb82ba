package siteconfig

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nisimpson/tenantmap"
	"github.com/nisimpson/tenantmap/countrypack"
	"github.com/nisimpson/tenantmap/dynamock"
)

type tenantReaderFunc func(ctx context.Context, tenantID string) (*tenantmap.Tenant, error)

func (f tenantReaderFunc) GetTenantConfig(ctx context.Context, tenantID string) (*tenantmap.Tenant, error) {
	return f(ctx, tenantID)
}

func newStore(t *testing.T, tenants ...*tenantmap.Tenant) *tenantmap.Store {
	t.Helper()
	store := tenantmap.NewStore(dynamock.NewMemoryTable(), tenantmap.NewTable("sites"))
	for _, tenant := range tenants {
		if err := store.PutTenant(context.Background(), tenant); err != nil {
			t.Fatalf("failed to seed tenant %s: %v", tenant.ID, err)
		}
	}
	return store
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	registry := countrypack.MustNew(countrypack.DefaultCode)

	store := newStore(t,
		&tenantmap.Tenant{
			ID:          "acme",
			Name:        "Acme",
			Domain:      "acme.example",
			Status:      tenantmap.StatusLive,
			CountryCode: "de",
			Theme: tenantmap.Theme{
				{Name: "primary", Value: "#ff0000"},
				{Name: "radius", Value: "4px"},
			},
		},
		&tenantmap.Tenant{
			ID:          "draft",
			Domain:      "draft.example",
			Status:      tenantmap.StatusDraft,
			CountryCode: "ZZ",
		},
		&tenantmap.Tenant{
			ID:          "override",
			Domain:      "override.example",
			Status:      tenantmap.StatusLive,
			CountryCode: "US",
			Locale:      "es-US",
		},
	)
	resolver := NewResolver(store, registry)

	t.Run("live tenant", func(t *testing.T) {
		cfg, err := resolver.Resolve(ctx, "acme")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TenantID() != "acme" || cfg.Domain() != "acme.example" || cfg.Name() != "Acme" {
			t.Errorf("unexpected tenant fields: %+v", cfg.View())
		}
		if !cfg.IsPublic() || !cfg.Indexable() {
			t.Error("expected live tenant to be public")
		}
		if cfg.CountryCode() != "DE" {
			t.Errorf("expected DE, got %s", cfg.CountryCode())
		}
		if cfg.Locale() != "de-DE" {
			t.Errorf("expected pack locale de-DE, got %s", cfg.Locale())
		}
		if cfg.Pack().Currency.Code != "EUR" {
			t.Errorf("expected EUR, got %s", cfg.Pack().Currency.Code)
		}
		if got := cfg.Theme(); len(got) != 2 || got[0].Name != "primary" || got[1].Name != "radius" {
			t.Errorf("expected theme in source order, got %v", got)
		}
	})

	t.Run("unknown country uses default pack", func(t *testing.T) {
		cfg, err := resolver.Resolve(ctx, "draft")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.CountryCode() != countrypack.DefaultCode {
			t.Errorf("expected %s, got %s", countrypack.DefaultCode, cfg.CountryCode())
		}
		if !reflect.DeepEqual(cfg.Pack(), registry.Pack(countrypack.DefaultCode)) {
			t.Error("expected the default pack")
		}
		if cfg.IsPublic() || cfg.Indexable() {
			t.Error("expected draft tenant to be non-public")
		}
	})

	t.Run("tenant locale wins over pack", func(t *testing.T) {
		cfg, err := resolver.Resolve(ctx, "override")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Locale() != "es-US" {
			t.Errorf("expected es-US, got %s", cfg.Locale())
		}
		if cfg.Pack().Locale != "en-US" {
			t.Errorf("expected pack locale to stay en-US, got %s", cfg.Pack().Locale)
		}
	})

	t.Run("unknown tenant", func(t *testing.T) {
		cfg, err := resolver.Resolve(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if cfg != nil {
			t.Error("expected no config on failure")
		}
		if cfg.Indexable() {
			t.Error("expected nil config to be non-indexable")
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err := resolver.Resolve(ctx, "acme")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := resolver.Resolve(ctx, "acme")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("expected equal configs, got %+v and %+v", first.View(), second.View())
		}
	})

	t.Run("returned values are copies", func(t *testing.T) {
		cfg, err := resolver.Resolve(ctx, "acme")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		theme := cfg.Theme()
		theme[0].Value = "#000000"
		pack := cfg.Pack()
		pack.Address[0].Label = "changed"

		if v, _ := cfg.Theme().Lookup("primary"); v != "#ff0000" {
			t.Errorf("theme was mutated: %s", v)
		}
		if cfg.Pack().Address[0].Label == "changed" {
			t.Error("pack was mutated")
		}
	})
}

func TestResolver_StoreUnavailable(t *testing.T) {
	registry := countrypack.MustNew("")

	resolver := NewResolver(tenantReaderFunc(func(context.Context, string) (*tenantmap.Tenant, error) {
		return nil, tenantmap.ErrStoreUnavailable
	}), registry)

	cfg, err := resolver.Resolve(context.Background(), "acme")
	if !errors.Is(err, tenantmap.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("store failure must not read as not found")
	}
	if cfg != nil {
		t.Error("expected no config on failure")
	}
}

func TestResolver_ThrottledStore(t *testing.T) {
	table := dynamock.NewMemoryTable()
	store := tenantmap.NewStore(table, tenantmap.NewTable("sites"))
	if err := store.PutTenant(context.Background(), &tenantmap.Tenant{ID: "acme", Status: tenantmap.StatusLive}); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	table.Fail = func(op string) error {
		return context.DeadlineExceeded
	}

	_, err := NewResolver(store, countrypack.MustNew("")).Resolve(context.Background(), "acme")
	if !tenantmap.IsUnavailable(err) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}
