// Package dynamock provides testing utilities for the tenantmap store.
//
// This package includes:
//   - an expectation-based mock DynamoDB client for unit tests
//   - an in-memory table that honours tenantmap's key conditions
//   - DynamoDB Local helpers with table provisioning and cleanup
//   - tenant and context entry builders plus seeding helpers
//
// # Mock Client
//
// Every MockClient operation fails the test unless an expectation is set:
//
//	mock := dynamock.NewMockClient(t)
//	mock.QueryFunc = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
//		return &dynamodb.QueryOutput{}, nil
//	}
//
//	store := tenantmap.NewStore(mock, tenantmap.NewTable("sites"))
//
// # Memory Table
//
// MemoryTable stores items in a map and answers the partition and
// begins_with queries the store issues, including Limit and
// ExclusiveStartKey. Fail injects errors per operation:
//
//	table := dynamock.NewMemoryTable()
//	table.Fail = func(op string) error {
//		if op == "GetItem" {
//			return &types.ProvisionedThroughputExceededException{}
//		}
//		return nil
//	}
//
// # Builders and Seeding
//
//	seeder := dynamock.NewSeedTestData(table, tenantmap.NewTable("sites"))
//	err := seeder.SeedTenants(ctx, 30,
//		dynamock.NewTenant("acme", dynamock.WithCountry("DE")),
//		dynamock.NewTenant("draft", dynamock.WithStatus(tenantmap.StatusDraft)),
//	)
//
// # Local DynamoDB
//
//	dynamock.RunIntegrationTest(t, nil, func(local *dynamock.LocalDynamoDB, store *tenantmap.Store) {
//		// store is bound to a fresh table that is deleted afterwards
//	})
package dynamock
