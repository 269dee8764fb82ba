package dynamock

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nisimpson/tenantmap"
)

// IntegrationTestConfig controls RunIntegrationTest.
type IntegrationTestConfig struct {
	Port             int
	SkipIfNotRunning bool
	TablePrefix      string
	CleanupTimeout   time.Duration
}

// DefaultIntegrationTestConfig targets DynamoDB Local on its stock port and
// skips when it is not running.
func DefaultIntegrationTestConfig() *IntegrationTestConfig {
	return &IntegrationTestConfig{
		Port:             DefaultLocalPort,
		SkipIfNotRunning: true,
		TablePrefix:      "tenantmap-it",
		CleanupTimeout:   30 * time.Second,
	}
}

// NewTestTable returns prefix followed by a random suffix.
func NewTestTable(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// RunIntegrationTest creates an isolated table on DynamoDB Local, runs fn
// against a store bound to it and deletes the table afterwards. The test is
// skipped in short mode, and when DynamoDB Local is not running unless
// config says otherwise.
func RunIntegrationTest(t *testing.T, config *IntegrationTestConfig, fn func(local *LocalDynamoDB, store *tenantmap.Store)) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	if config == nil {
		config = DefaultIntegrationTestConfig()
	}

	local := NewLocalDynamoDB(config.Port)
	ctx := context.Background()

	if !local.IsAvailable(ctx) {
		if config.SkipIfNotRunning {
			t.Skipf("no DynamoDB Local on port %d", config.Port)
		}
		t.Fatalf("DynamoDB Local not available on port %d", config.Port)
	}

	table := tenantmap.NewTable(NewTestTable(config.TablePrefix))
	if err := local.CreateTable(ctx, table); err != nil {
		t.Fatalf("Failed to create test table %s: %v", table.TableName, err)
	}

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), config.CleanupTimeout)
		defer cancel()
		if err := local.DeleteTable(cleanupCtx, table.TableName); err != nil {
			t.Errorf("Failed to cleanup table %s: %v", table.TableName, err)
		}
	})

	fn(local, tenantmap.NewStore(local.Client, table))
}

// SeedTestData writes fixtures through a Store so they pass the same key
// checks as production writes.
type SeedTestData struct {
	store *tenantmap.Store
}

// NewSeedTestData creates a new test data seeder writing through client.
func NewSeedTestData(client tenantmap.DynamoDBClient, table *tenantmap.Table) *SeedTestData {
	return &SeedTestData{store: tenantmap.NewStore(client, table)}
}

// SeedTenants writes a tenant configuration for every tenant, plus n context
// entries for each.
func (s *SeedTestData) SeedTenants(ctx context.Context, n int, tenants ...*tenantmap.Tenant) error {
	records := make([]tenantmap.Marshaler, 0, len(tenants)*(n+1))
	for _, tenant := range tenants {
		records = append(records, tenant)
		records = append(records, NewContextEntries(tenant.ID, n)...)
	}
	return s.SeedEntities(ctx, records...)
}

// SeedEntities seeds multiple records into the table in batches.
func (s *SeedTestData) SeedEntities(ctx context.Context, records ...tenantmap.Marshaler) error {
	if err := s.store.BatchPut(ctx, records...); err != nil {
		return fmt.Errorf("failed to seed %d records: %w", len(records), err)
	}
	return nil
}

// SeedFromJSON decodes a JSON:API seed document and writes every resource.
// It returns the number of records written.
func (s *SeedTestData) SeedFromJSON(ctx context.Context, document string) (int, error) {
	records, err := tenantmap.DecodeSeed(strings.NewReader(document))
	if err != nil {
		return 0, err
	}
	if err := s.SeedEntities(ctx, records...); err != nil {
		return 0, err
	}
	return len(records), nil
}
