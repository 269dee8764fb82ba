package tenantmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func withFixedClock(opts *MarshalOptions) {
	opts.Tick = func() time.Time { return fixedTime }
}

func TestNewTable(t *testing.T) {
	table := NewTable("test-table")

	if table.TableName != "test-table" {
		t.Errorf("Expected table name 'test-table', got %s", table.TableName)
	}
	if table.KeyDelimiter != "#" {
		t.Errorf("Expected key delimiter '#', got %s", table.KeyDelimiter)
	}
	if table.PaginationTTL != 24*time.Hour {
		t.Errorf("Expected pagination TTL 24h, got %v", table.PaginationTTL)
	}
	if got := table.PartitionKey("acme"); got != "TENANT#acme" {
		t.Errorf("Expected partition key TENANT#acme, got %s", got)
	}
	if got := table.ContextSortKey("hero"); got != "CONTEXT#hero" {
		t.Errorf("Expected sort key CONTEXT#hero, got %s", got)
	}
}

func TestMarshalRecord(t *testing.T) {
	t.Run("tenant", func(t *testing.T) {
		rec, err := MarshalRecord(&Tenant{ID: "acme", Domain: "acme.example", Status: StatusLive}, withFixedClock)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.PartitionKey != "TENANT#acme" || rec.SortKey != "CONFIG" || rec.Entity != EntityTenant {
			t.Errorf("unexpected keys %+v", rec)
		}
		if !rec.CreatedAt.Equal(fixedTime) || !rec.UpdatedAt.Equal(fixedTime) {
			t.Errorf("unexpected timestamps %v %v", rec.CreatedAt, rec.UpdatedAt)
		}
		if rec.Expires != 0 {
			t.Errorf("expected no expiry, got %d", rec.Expires)
		}
	})

	t.Run("tenant keeps its creation time", func(t *testing.T) {
		created := fixedTime.Add(-48 * time.Hour)
		rec, err := MarshalRecord(&Tenant{ID: "acme", CreatedAt: created}, withFixedClock)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rec.CreatedAt.Equal(created) || !rec.UpdatedAt.Equal(fixedTime) {
			t.Errorf("unexpected timestamps %v %v", rec.CreatedAt, rec.UpdatedAt)
		}
	})

	t.Run("context entry stores only its payload", func(t *testing.T) {
		rec, err := MarshalRecord(&ContextEntry{TenantID: "acme", ID: "hero", Data: map[string]any{"title": "Hi"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.SortKey != "CONTEXT#hero" || rec.Entity != EntityContext {
			t.Errorf("unexpected keys %+v", rec)
		}
		data, ok := rec.Data.(map[string]any)
		if !ok || data["title"] != "Hi" {
			t.Errorf("unexpected data %#v", rec.Data)
		}
	})

	t.Run("page cursor expires", func(t *testing.T) {
		rec, err := MarshalRecord(&PageCursor{TenantID: "acme", Cursor: "abc"}, withFixedClock)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.SortKey != "PAGE#abc" || rec.Entity != EntityPage {
			t.Errorf("unexpected keys %+v", rec)
		}
		if want := fixedTime.Add(24 * time.Hour).Unix(); rec.Expires != want {
			t.Errorf("expected expiry %d, got %d", want, rec.Expires)
		}
	})

	invalid := []struct {
		name string
		in   Marshaler
	}{
		{name: "empty tenant id", in: &Tenant{}},
		{name: "tenant id with delimiter", in: &Tenant{ID: "a#b"}},
		{name: "context without tenant", in: &ContextEntry{ID: "hero"}},
		{name: "context without id", in: &ContextEntry{TenantID: "acme", ID: " "}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalRecord(tt.in)
			if !errors.Is(err, ErrInvalidKeyScheme) {
				t.Errorf("expected ErrInvalidKeyScheme, got %v", err)
			}
		})
	}
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name  string
		rec   Record
		valid bool
	}{
		{name: "tenant", rec: Record{PartitionKey: "TENANT#acme", SortKey: "CONFIG", Entity: EntityTenant}, valid: true},
		{name: "context", rec: Record{PartitionKey: "TENANT#acme", SortKey: "CONTEXT#x", Entity: EntityContext}, valid: true},
		{name: "page", rec: Record{PartitionKey: "TENANT#acme", SortKey: "PAGE#x", Entity: EntityPage}, valid: true},
		{name: "entity disagrees with sort key", rec: Record{PartitionKey: "TENANT#acme", SortKey: "CONTEXT#x", Entity: EntityTenant}},
		{name: "unknown sort key", rec: Record{PartitionKey: "TENANT#acme", SortKey: "ORDER#x", Entity: EntityContext}},
		{name: "empty entry id", rec: Record{PartitionKey: "TENANT#acme", SortKey: "CONTEXT#", Entity: EntityContext}},
		{name: "foreign partition key", rec: Record{PartitionKey: "USER#acme", SortKey: "CONFIG", Entity: EntityTenant}},
		{name: "empty tenant", rec: Record{PartitionKey: "TENANT#", SortKey: "CONFIG", Entity: EntityTenant}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.rec, DefaultKeyDelimiter)
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidKeyScheme) {
				t.Errorf("expected ErrInvalidKeyScheme, got %v", err)
			}
		})
	}
}

func TestUnmarshalRecord(t *testing.T) {
	in := &Tenant{
		ID:          "acme",
		Domain:      "acme.example",
		Status:      StatusLive,
		CountryCode: "DE",
		Theme:       Theme{{Name: "color-primary", Value: "#0a0"}, {Name: "font", Value: "Inter"}},
	}
	rec, err := MarshalRecord(in, withFixedClock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("tenant", func(t *testing.T) {
		var out Tenant
		if _, err := UnmarshalRecord(item, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.ID != "acme" || out.Domain != "acme.example" || out.CountryCode != "DE" {
			t.Errorf("unexpected tenant %+v", out)
		}
		if len(out.Theme) != 2 || out.Theme[1].Name != "font" {
			t.Errorf("theme order lost: %+v", out.Theme)
		}
		if !out.CreatedAt.Equal(fixedTime) {
			t.Errorf("expected created %v, got %v", fixedTime, out.CreatedAt)
		}
	})

	t.Run("wrong entity", func(t *testing.T) {
		var out PageCursor
		_, err := UnmarshalRecord(item, &out)
		if !errors.Is(err, ErrInvalidKeyScheme) {
			t.Errorf("expected ErrInvalidKeyScheme, got %v", err)
		}
	})

	t.Run("missing data", func(t *testing.T) {
		bare := Item{
			AttributeNamePartitionKey: item[AttributeNamePartitionKey],
			AttributeNameSortKey:      item[AttributeNameSortKey],
		}
		var out Tenant
		if _, err := UnmarshalRecord(bare, &out); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestUnmarshalTableKey(t *testing.T) {
	pk, sk, err := UnmarshalTableKey(NewTable("t").key("TENANT#acme", "CONFIG"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pk != "TENANT#acme" || sk != "CONFIG" {
		t.Errorf("unexpected keys %s %s", pk, sk)
	}

	if _, _, err := UnmarshalTableKey(Item{}); err == nil {
		t.Error("expected an error for missing keys")
	}
}

func TestStatus_IsPublic(t *testing.T) {
	for status, want := range map[Status]bool{
		StatusLive:      true,
		StatusDraft:     false,
		StatusSuspended: false,
		StatusArchived:  false,
		"live":          false,
		"":              false,
	} {
		if got := status.IsPublic(); got != want {
			t.Errorf("%q.IsPublic() = %v, want %v", status, got, want)
		}
	}
}

func TestTheme(t *testing.T) {
	t.Run("json keeps key order", func(t *testing.T) {
		var theme Theme
		src := `{"z-index":"1","color-primary":"#fff","a":"2"}`
		if err := json.Unmarshal([]byte(src), &theme); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if theme[0].Name != "z-index" || theme[2].Name != "a" {
			t.Errorf("unexpected order %+v", theme)
		}
		out, err := json.Marshal(theme)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(out) != src {
			t.Errorf("expected %s, got %s", src, out)
		}
	})

	t.Run("repeated key keeps first position", func(t *testing.T) {
		var theme Theme
		if err := json.Unmarshal([]byte(`{"a":"1","b":"2","a":"3"}`), &theme); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(theme) != 2 || theme[0].Value != "3" {
			t.Errorf("unexpected theme %+v", theme)
		}
	})

	t.Run("rejects non objects", func(t *testing.T) {
		var theme Theme
		if err := json.Unmarshal([]byte(`["a"]`), &theme); err == nil {
			t.Error("expected an error")
		}
		if err := json.Unmarshal([]byte(`{"a":1}`), &theme); err == nil {
			t.Error("expected an error for a non string value")
		}
	})

	t.Run("null", func(t *testing.T) {
		theme := Theme{{Name: "a", Value: "1"}}
		if err := json.Unmarshal([]byte(`null`), &theme); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if theme != nil {
			t.Errorf("expected nil theme, got %+v", theme)
		}
	})

	t.Run("lookup set clone", func(t *testing.T) {
		theme := Theme{}.Set("a", "1").Set("b", "2").Set("a", "3")
		if v, ok := theme.Lookup("a"); !ok || v != "3" {
			t.Errorf("unexpected lookup %q %v", v, ok)
		}
		if _, ok := theme.Lookup("missing"); ok {
			t.Error("expected missing lookup to fail")
		}

		clone := theme.Clone()
		clone[0].Value = "changed"
		if theme[0].Value != "3" {
			t.Error("clone shares memory with the original")
		}
	})

	t.Run("attribute value shapes", func(t *testing.T) {
		stored, err := attributevalue.Marshal(Theme{{Name: "z", Value: "1"}, {Name: "a", Value: "2"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := stored.(*types.AttributeValueMemberL); !ok {
			t.Fatalf("expected a list, got %T", stored)
		}

		tests := []struct {
			name string
			av   types.AttributeValue
			want string
		}{
			{name: "list keeps order", av: stored, want: "[{z 1} {a 2}]"},
			{name: "map sorted by name", av: &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
				"z": &types.AttributeValueMemberS{Value: "1"},
				"a": &types.AttributeValueMemberS{Value: "2"},
				"m": &types.AttributeValueMemberN{Value: "3"},
			}}, want: "[{a 2} {m 3} {z 1}]"},
			{name: "null", av: &types.AttributeValueMemberNULL{Value: true}, want: "[]"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var theme Theme
				if err := attributevalue.Unmarshal(tt.av, &theme); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got := fmt.Sprint(theme); got != tt.want {
					t.Errorf("expected %s, got %s", tt.want, got)
				}
			})
		}

		var theme Theme
		bad := &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"a": &types.AttributeValueMemberBOOL{Value: true},
		}}
		if err := attributevalue.Unmarshal(bad, &theme); err == nil {
			t.Error("expected an error for a non string variable")
		}
		if err := attributevalue.Unmarshal(&types.AttributeValueMemberS{Value: "x"}, &theme); err == nil {
			t.Error("expected an error for a scalar theme")
		}
	})
}
