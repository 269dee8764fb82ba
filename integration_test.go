package tenantmap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nisimpson/tenantmap"
	"github.com/nisimpson/tenantmap/dynamock"
)

// These tests run against DynamoDB Local on port 8000 and are skipped when it
// is not running.
func TestIntegration_Store(t *testing.T) {
	dynamock.RunIntegrationTest(t, nil, func(local *dynamock.LocalDynamoDB, store *tenantmap.Store) {
		ctx := context.Background()
		seeder := dynamock.NewSeedTestData(local.Client, store.Table())

		err := seeder.SeedTenants(ctx, 30,
			dynamock.NewTenant("acme", dynamock.WithCountry("DE"), dynamock.WithTheme("color-primary", "#0a0")),
			dynamock.NewTenant("globex"),
		)
		if err != nil {
			t.Fatalf("failed to seed: %v", err)
		}

		tenant, err := store.GetTenantConfig(ctx, "acme")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tenant.CountryCode != "DE" || len(tenant.Theme) != 1 {
			t.Errorf("unexpected tenant %+v", tenant)
		}

		if _, err := store.GetTenantConfig(ctx, "nobody"); !errors.Is(err, tenantmap.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		var (
			cursor string
			count  int
		)
		for {
			page, err := store.ListContextEntries(ctx, "acme", tenantmap.ListOptions{Cursor: cursor, Limit: 25})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, item := range page.Items {
				if item.Data["tenant"] != "acme" {
					t.Errorf("leaked entry %+v", item)
				}
			}
			count += len(page.Items)
			if page.NextCursor == "" {
				break
			}
			cursor = page.NextCursor
		}
		if count != 30 {
			t.Errorf("expected 30 entries, got %d", count)
		}
	})
}
