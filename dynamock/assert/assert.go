// Package assert provides fluent assertions over stored table items.
//
//	import "github.com/nisimpson/tenantmap/dynamock/assert"
//
//	assert.Items(t, table.Items()).
//		HasCount(31).
//		ContainsKey("TENANT#acme", "CONFIG").
//		AllInPartition("TENANT#acme")
//
//	assert.Item(t, item).
//		HasKey("sk", "CONFIG").
//		HasAttribute("entity", "tenant").
//		HasDataField("domain", "acme.example")
package assert

import (
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nisimpson/tenantmap"
)

// ItemsAssertion provides fluent assertions for DynamoDB items.
type ItemsAssertion struct {
	t     testing.TB
	items []map[string]types.AttributeValue
}

// Items creates a new ItemsAssertion for the given DynamoDB items.
func Items(t testing.TB, items []map[string]types.AttributeValue) *ItemsAssertion {
	return &ItemsAssertion{t: t, items: items}
}

// HasCount asserts that the items collection has the expected count.
func (a *ItemsAssertion) HasCount(expected int) *ItemsAssertion {
	a.t.Helper()
	if len(a.items) != expected {
		a.t.Errorf("expected %d items, got %d", expected, len(a.items))
	}
	return a
}

// IsEmpty asserts that the items collection is empty.
func (a *ItemsAssertion) IsEmpty() *ItemsAssertion {
	a.t.Helper()
	return a.HasCount(0)
}

// ContainsKey asserts that an item with the given partition and sort key is present.
func (a *ItemsAssertion) ContainsKey(pk, sk string) *ItemsAssertion {
	a.t.Helper()
	for _, item := range a.items {
		if stringAttr(item, tenantmap.AttributeNamePartitionKey) == pk &&
			stringAttr(item, tenantmap.AttributeNameSortKey) == sk {
			return a
		}
	}
	a.t.Errorf("expected to find item (%s, %s)", pk, sk)
	return a
}

// AllInPartition asserts that every item belongs to the partition pk.
func (a *ItemsAssertion) AllInPartition(pk string) *ItemsAssertion {
	a.t.Helper()
	for _, item := range a.items {
		if got := stringAttr(item, tenantmap.AttributeNamePartitionKey); got != pk {
			a.t.Errorf("expected every item in %s, found one in %s", pk, got)
		}
	}
	return a
}

// CountEntity asserts how many items carry the entity discriminator.
func (a *ItemsAssertion) CountEntity(entity tenantmap.EntityType, expected int) *ItemsAssertion {
	a.t.Helper()
	count := 0
	for _, item := range a.items {
		if stringAttr(item, tenantmap.AttributeNameEntity) == string(entity) {
			count++
		}
	}
	if count != expected {
		a.t.Errorf("expected %d %s items, got %d", expected, entity, count)
	}
	return a
}

// ItemAssertion provides fluent assertions for a single DynamoDB item.
type ItemAssertion struct {
	t    testing.TB
	item map[string]types.AttributeValue
}

// Item creates a new ItemAssertion.
func Item(t testing.TB, item map[string]types.AttributeValue) *ItemAssertion {
	return &ItemAssertion{t: t, item: item}
}

// HasKey asserts that a key attribute has the expected string value.
func (a *ItemAssertion) HasKey(name, expected string) *ItemAssertion {
	a.t.Helper()
	if got := stringAttr(a.item, name); got != expected {
		a.t.Errorf("expected key %s = %q, got %q", name, expected, got)
	}
	return a
}

// HasAttribute asserts that a top level attribute has the expected string value.
func (a *ItemAssertion) HasAttribute(name, expected string) *ItemAssertion {
	a.t.Helper()
	return a.HasKey(name, expected)
}

// HasKeyPrefix asserts that a key attribute starts with prefix.
func (a *ItemAssertion) HasKeyPrefix(name, prefix string) *ItemAssertion {
	a.t.Helper()
	if got := stringAttr(a.item, name); !strings.HasPrefix(got, prefix) {
		a.t.Errorf("expected key %s to start with %q, got %q", name, prefix, got)
	}
	return a
}

// HasDataField asserts that the data map holds a string field with the expected value.
func (a *ItemAssertion) HasDataField(field, expected string) *ItemAssertion {
	a.t.Helper()
	data, ok := a.item[tenantmap.AttributeNameData].(*types.AttributeValueMemberM)
	if !ok {
		a.t.Errorf("expected item to have a data map")
		return a
	}
	if got := stringAttr(data.Value, field); got != expected {
		a.t.Errorf("expected data field %s = %q, got %q", field, expected, got)
	}
	return a
}

// HasExpiry asserts that the item carries a time-to-live.
func (a *ItemAssertion) HasExpiry() *ItemAssertion {
	a.t.Helper()
	if _, ok := a.item[tenantmap.AttributeNameExpires].(*types.AttributeValueMemberN); !ok {
		a.t.Errorf("expected item to have an %s attribute", tenantmap.AttributeNameExpires)
	}
	return a
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
