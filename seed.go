package tenantmap

import (
	"encoding/json"
	"fmt"
	"io"
)

// SeedDocument is an array of JSON:API resources describing tenants and
// their context entries. Context resources name their owner with a "tenant"
// relationship:
//
//	[
//	  {"type": "tenant", "id": "acme", "attributes": {"domain": "acme.example", "status": "LIVE"}},
//	  {"type": "context", "id": "home", "attributes": {"path": "/"},
//	   "relationships": {"tenant": {"data": {"type": "tenant", "id": "acme"}}}}
//	]
type SeedDocument []SeedResource

// SeedResource is one JSON:API resource of a SeedDocument.
type SeedResource struct {
	Type          string                      `json:"type"`
	ID            string                      `json:"id"`
	Attributes    json.RawMessage             `json:"attributes,omitempty"`
	Relationships map[string]SeedRelationship `json:"relationships,omitempty"`
}

// SeedRelationship is a to-one JSON:API relationship.
type SeedRelationship struct {
	Data *SeedIdentifier `json:"data"`
}

// SeedIdentifier is a JSON:API resource identifier.
type SeedIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

const (
	seedTypeTenant  = "tenant"
	seedTypeContext = "context"
)

// DecodeSeed parses a SeedDocument into records ready for Store.BatchPut.
// Keys are not validated here; BatchPut rejects malformed ones before any
// write.
func DecodeSeed(r io.Reader) ([]Marshaler, error) {
	var document SeedDocument
	if err := json.NewDecoder(r).Decode(&document); err != nil {
		return nil, fmt.Errorf("failed to parse seed document: %w", err)
	}

	out := make([]Marshaler, 0, len(document))
	for i, resource := range document {
		m, err := resource.marshaler()
		if err != nil {
			return nil, fmt.Errorf("failed to convert resource at index %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (r SeedResource) marshaler() (Marshaler, error) {
	if r.Type == "" {
		return nil, fmt.Errorf("resource missing required 'type' field")
	}
	if r.ID == "" {
		return nil, fmt.Errorf("resource missing required 'id' field")
	}

	switch r.Type {
	case seedTypeTenant:
		var tenant Tenant
		if err := decodeAttributes(r.Attributes, &tenant); err != nil {
			return nil, fmt.Errorf("failed to parse tenant %s: %w", r.ID, err)
		}
		tenant.ID = r.ID
		return &tenant, nil

	case seedTypeContext:
		owner, ok := r.Relationships["tenant"]
		if !ok || owner.Data == nil || owner.Data.ID == "" {
			return nil, fmt.Errorf("context %s missing 'tenant' relationship", r.ID)
		}
		if owner.Data.Type != seedTypeTenant {
			return nil, fmt.Errorf("context %s relationship must point at a tenant, got %q", r.ID, owner.Data.Type)
		}
		data := map[string]any{}
		if err := decodeAttributes(r.Attributes, &data); err != nil {
			return nil, fmt.Errorf("failed to parse context %s: %w", r.ID, err)
		}
		return &ContextEntry{TenantID: owner.Data.ID, ID: r.ID, Data: data}, nil

	default:
		return nil, fmt.Errorf("unknown resource type %q", r.Type)
	}
}

// decodeAttributes decodes raw resource attributes into target. Attributes
// stay raw until here so object key order, which a theme depends on, is kept.
func decodeAttributes(raw json.RawMessage, target any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, target)
}
