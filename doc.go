// Package tenantmap stores multi-tenant site data in a single DynamoDB table
// using the AWS SDK for Go v2.
//
// # Key Scheme
//
// Every record belongs to exactly one tenant partition. The sort key encodes
// the entity type and an explicit entity attribute repeats it:
//   - pk: TENANT#<tenantId>
//   - sk: CONFIG (tenant configuration), CONTEXT#<entryId> (context entries),
//     or PAGE#<cursor> (stored pagination cursors)
//   - entity: tenant, context or page
//
// Writes that break this scheme are rejected with [ErrInvalidKeyScheme].
//
// # Basic Usage
//
//	table := tenantmap.NewTable("sites")
//	store := tenantmap.NewStore(ddb, table)
//
//	err := store.PutTenant(ctx, &tenantmap.Tenant{
//	    ID:     "acme",
//	    Domain: "acme.example",
//	    Status: tenantmap.StatusLive,
//	})
//
//	tenant, err := store.GetTenantConfig(ctx, "acme")
//	if errors.Is(err, tenantmap.ErrNotFound) {
//	    // render the generic not found page
//	}
//
// # Querying
//
// Context entries are listed with a range query that always carries the
// tenant's exact partition key:
//
//	page, err := store.ListContextEntries(ctx, "acme", tenantmap.ListOptions{Limit: 25})
//	next, err := store.ListContextEntries(ctx, "acme", tenantmap.ListOptions{Cursor: page.NextCursor})
//
// # Pagination
//
// The default [TablePaginator] stores cursors in the requesting tenant's
// partition with a TTL. [EncodedPaginator] is a stateless alternative:
//
//	store := tenantmap.NewStore(ddb, table, tenantmap.WithPaginator(table.EncodedPaginator()))
//
// # Errors
//
// Transient failures (throttling, timeouts, service errors) wrap
// [ErrStoreUnavailable] and are never reported as [ErrNotFound].
package tenantmap
