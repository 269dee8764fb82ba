package tenantmap_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/nisimpson/tenantmap"
	"github.com/nisimpson/tenantmap/dynamock"
)

// Example shows how records map onto the single table layout.
func Example() {
	table := tenantmap.NewTable("sites")

	put, err := table.MarshalPut(&tenantmap.Tenant{ID: "acme", Domain: "acme.example", Status: tenantmap.StatusLive})
	if err != nil {
		log.Fatal(err)
	}
	pk, sk, _ := tenantmap.UnmarshalTableKey(put.Item)
	fmt.Println(*put.TableName, pk, sk)

	batches, err := table.MarshalBatch(dynamock.NewContextEntries("acme", 30))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Created %d batches for 30 entries\n", len(batches))

	// Output:
	// sites TENANT#acme CONFIG
	// Created 2 batches for 30 entries
}

// Example_customDelimiter demonstrates using a custom key delimiter.
func Example_customDelimiter() {
	table := tenantmap.NewTable("sites")
	table.KeyDelimiter = "/"

	fmt.Println(table.PartitionKey("acme"), table.ContextSortKey("hero"))

	// Output:
	// TENANT/acme CONTEXT/hero
}

// ExampleStore_ListContextEntries pages through a tenant's context entries.
func ExampleStore_ListContextEntries() {
	ctx := context.Background()
	store := tenantmap.NewStore(dynamock.NewMemoryTable(), tenantmap.NewTable("sites"))
	if err := store.BatchPut(ctx, dynamock.NewContextEntries("acme", 5)...); err != nil {
		log.Fatal(err)
	}

	opts := tenantmap.ListOptions{Limit: 2}
	for {
		page, err := store.ListContextEntries(ctx, "acme", opts)
		if err != nil {
			log.Fatal(err)
		}
		ids := make([]string, 0, len(page.Items))
		for _, entry := range page.Items {
			ids = append(ids, entry.ID)
		}
		fmt.Println(strings.Join(ids, " "))
		if page.NextCursor == "" {
			break
		}
		opts.Cursor = page.NextCursor
	}

	// Output:
	// entry-000 entry-001
	// entry-002 entry-003
	// entry-004
}
