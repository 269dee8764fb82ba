package tenantmap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestTable_MarshalPut(t *testing.T) {
	table := NewTable("sites")

	input, err := table.MarshalPut(&ContextEntry{TenantID: "acme", ID: "hero", Data: map[string]any{"title": "Hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *input.TableName != "sites" {
		t.Errorf("expected table sites, got %s", *input.TableName)
	}

	for name, want := range map[string]string{
		AttributeNamePartitionKey: "TENANT#acme",
		AttributeNameSortKey:      "CONTEXT#hero",
		AttributeNameEntity:       "context",
	} {
		got, ok := input.Item[name].(*types.AttributeValueMemberS)
		if !ok || got.Value != want {
			t.Errorf("expected %s = %q, got %#v", name, want, input.Item[name])
		}
	}

	data, ok := input.Item[AttributeNameData].(*types.AttributeValueMemberM)
	if !ok {
		t.Fatalf("expected data map, got %#v", input.Item[AttributeNameData])
	}
	if title, ok := data.Value["title"].(*types.AttributeValueMemberS); !ok || title.Value != "Hi" {
		t.Errorf("unexpected data %#v", data.Value)
	}
	if _, ok := input.Item[AttributeNameExpires]; ok {
		t.Error("context entries must not expire")
	}
}

func TestTable_MarshalPut_CustomDelimiter(t *testing.T) {
	table := NewTable("sites")
	table.KeyDelimiter = "|"

	input, err := table.MarshalPut(&Tenant{ID: "acme#1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pk := input.Item[AttributeNamePartitionKey].(*types.AttributeValueMemberS).Value; pk != "TENANT|acme#1" {
		t.Errorf("unexpected partition key %s", pk)
	}

	if _, err := table.MarshalPut(&Tenant{ID: "acme|1"}); !errors.Is(err, ErrInvalidKeyScheme) {
		t.Errorf("expected ErrInvalidKeyScheme, got %v", err)
	}
}

func TestTable_MarshalBatch(t *testing.T) {
	table := NewTable("sites")

	entries := make([]Marshaler, 0, 60)
	for i := range 60 {
		entries = append(entries, &ContextEntry{TenantID: "acme", ID: fmt.Sprintf("e%02d", i)})
	}

	batches, err := table.MarshalBatch(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sizes []int
	for _, batch := range batches {
		sizes = append(sizes, len(batch.RequestItems["sites"]))
	}
	if fmt.Sprint(sizes) != "[25 25 10]" {
		t.Errorf("expected batches of [25 25 10], got %v", sizes)
	}

	t.Run("invalid record fails the whole batch", func(t *testing.T) {
		bad := append(entries[:3:3], &ContextEntry{TenantID: "", ID: "x"})
		batches, err := table.MarshalBatch(bad)
		if !errors.Is(err, ErrInvalidKeyScheme) {
			t.Errorf("expected ErrInvalidKeyScheme, got %v", err)
		}
		if batches != nil {
			t.Errorf("expected no batches, got %d", len(batches))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		batches, err := table.MarshalBatch(nil)
		if err != nil || len(batches) != 0 {
			t.Errorf("expected no batches, got %d, %v", len(batches), err)
		}
	})
}

func TestTable_MarshalGet(t *testing.T) {
	table := NewTable("sites")

	input, err := table.MarshalGet(&Tenant{ID: "acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pk, sk, err := UnmarshalTableKey(input.Key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pk != "TENANT#acme" || sk != "CONFIG" {
		t.Errorf("unexpected key %s %s", pk, sk)
	}
	if len(input.Key) != 2 {
		t.Errorf("expected only key attributes, got %d", len(input.Key))
	}
}

func TestTable_MarshalCreateTable(t *testing.T) {
	table := NewTable("sites")

	input := table.MarshalCreateTable()
	if *input.TableName != "sites" {
		t.Errorf("unexpected table name %s", *input.TableName)
	}
	if len(input.KeySchema) != 2 {
		t.Fatalf("expected 2 key schema elements, got %d", len(input.KeySchema))
	}
	if *input.KeySchema[0].AttributeName != "pk" || input.KeySchema[0].KeyType != types.KeyTypeHash {
		t.Errorf("unexpected hash key %+v", input.KeySchema[0])
	}
	if *input.KeySchema[1].AttributeName != "sk" || input.KeySchema[1].KeyType != types.KeyTypeRange {
		t.Errorf("unexpected range key %+v", input.KeySchema[1])
	}
	if len(input.GlobalSecondaryIndexes) != 0 {
		t.Error("expected no secondary indexes")
	}

	ttl := table.MarshalTimeToLive()
	if *ttl.TimeToLiveSpecification.AttributeName != "expires" || !*ttl.TimeToLiveSpecification.Enabled {
		t.Errorf("unexpected ttl spec %+v", ttl.TimeToLiveSpecification)
	}
}
