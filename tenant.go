package tenantmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Status governs the public visibility of a tenant's site.
type Status string

const (
	StatusLive      Status = "LIVE"
	StatusDraft     Status = "DRAFT"
	StatusSuspended Status = "SUSPENDED"
	StatusArchived  Status = "ARCHIVED"
)

// IsPublic reports whether a site with this status may be served and indexed.
// Only LIVE is public; unknown statuses are not.
func (s Status) IsPublic() bool {
	return s == StatusLive
}

// ThemeVar is one style variable of a tenant theme.
type ThemeVar struct {
	Name  string `dynamodbav:"name" json:"name"`
	Value string `dynamodbav:"value" json:"value"`
}

// Theme maps style-variable names to CSS values. It is kept as a list so the
// order of the source document survives storage; in JSON it reads and writes
// as an object whose key order is preserved.
type Theme []ThemeVar

// Lookup returns the value of the variable name.
func (t Theme) Lookup(name string) (string, bool) {
	for _, v := range t {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Set replaces the value of name in place, or appends it.
func (t Theme) Set(name, value string) Theme {
	for i := range t {
		if t[i].Name == name {
			t[i].Value = value
			return t
		}
	}
	return append(t, ThemeVar{Name: name, Value: value})
}

// Clone returns a copy that shares no memory with t.
func (t Theme) Clone() Theme {
	if t == nil {
		return nil
	}
	out := make(Theme, len(t))
	copy(out, t)
	return out
}

// MarshalJSON writes the theme as a JSON object in declaration order.
func (t Theme) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(v.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(v.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string values, keeping key order.
// A repeated key keeps its first position and its last value.
func (t *Theme) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*t = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("theme must be a JSON object")
	}

	theme := Theme{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("theme variable %q: %w", key, err)
		}
		theme = theme.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*t = theme
	return nil
}

// UnmarshalDynamoDBAttributeValue implements attributevalue.Unmarshaler.
// Records written by this package hold the theme as a list of name/value
// pairs. A map written by other tools is accepted too, ordered by name.
func (t *Theme) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberNULL:
		*t = nil
		return nil

	case *types.AttributeValueMemberL:
		var vars []ThemeVar
		if err := attributevalue.Unmarshal(v, &vars); err != nil {
			return fmt.Errorf("theme: %w", err)
		}
		*t = Theme(vars)
		return nil

	case *types.AttributeValueMemberM:
		names := make([]string, 0, len(v.Value))
		for name := range v.Value {
			names = append(names, name)
		}
		sort.Strings(names)

		theme := make(Theme, 0, len(names))
		for _, name := range names {
			switch value := v.Value[name].(type) {
			case *types.AttributeValueMemberS:
				theme = append(theme, ThemeVar{Name: name, Value: value.Value})
			case *types.AttributeValueMemberN:
				theme = append(theme, ThemeVar{Name: name, Value: value.Value})
			default:
				return fmt.Errorf("theme variable %q: unsupported attribute %T", name, value)
			}
		}
		*t = theme
		return nil

	default:
		return fmt.Errorf("theme: unsupported attribute %T", av)
	}
}

// Tenant is one customer site's configuration record.
//
// Tenant implements Marshaler and Unmarshaler.
type Tenant struct {
	ID          string    `dynamodbav:"tenantId" json:"tenantId"`
	Name        string    `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Domain      string    `dynamodbav:"domain" json:"domain"`
	Status      Status    `dynamodbav:"status" json:"status"`
	Theme       Theme     `dynamodbav:"theme,omitempty" json:"theme,omitempty"`
	CountryCode string    `dynamodbav:"countryCode,omitempty" json:"countryCode,omitempty"`
	Locale      string    `dynamodbav:"locale,omitempty" json:"locale,omitempty"`
	CreatedAt   time.Time `dynamodbav:"-" json:"createdAt,omitempty"`
	UpdatedAt   time.Time `dynamodbav:"-" json:"updatedAt,omitempty"`
}

// MarshalRecord implements Marshaler with the tenant configuration key:
//   - partition key: TENANT#<id>
//   - sort key: CONFIG
func (t *Tenant) MarshalRecord(opts *MarshalOptions) error {
	if err := ValidateTenantID(t.ID, opts.KeyDelimiter); err != nil {
		return err
	}
	opts.TenantID = t.ID
	opts.Entity = EntityTenant
	if !t.CreatedAt.IsZero() {
		opts.Created = t.CreatedAt
	}
	return nil
}

// UnmarshalRecord implements Unmarshaler by copying the record timestamps.
func (t *Tenant) UnmarshalRecord(rec *Record) error {
	if rec.Entity != EntityTenant {
		return fmt.Errorf("%w: expected %q record, got %q", ErrInvalidKeyScheme, EntityTenant, rec.Entity)
	}
	t.CreatedAt = rec.CreatedAt
	t.UpdatedAt = rec.UpdatedAt
	return nil
}

// ContextEntry is an arbitrary tenant scoped content record. Data is stored
// and returned verbatim.
//
// ContextEntry implements DataMarshaler.
type ContextEntry struct {
	TenantID  string         `json:"tenantId"`
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// MarshalRecord implements Marshaler with the context entry key:
//   - partition key: TENANT#<tenantId>
//   - sort key: CONTEXT#<id>
func (e *ContextEntry) MarshalRecord(opts *MarshalOptions) error {
	if err := ValidateTenantID(e.TenantID, opts.KeyDelimiter); err != nil {
		return err
	}
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: empty context entry id", ErrInvalidKeyScheme)
	}
	opts.TenantID = e.TenantID
	opts.Entity = EntityContext
	opts.EntryID = e.ID
	return nil
}

// MarshalData implements DataMarshaler; only the payload is stored.
func (e *ContextEntry) MarshalData() (any, error) {
	if e.Data == nil {
		return map[string]any{}, nil
	}
	return e.Data, nil
}
