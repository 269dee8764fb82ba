package tenantmap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Clock is a function type that returns the current time for dependency injection.
type Clock func() time.Time

// DefaultClock returns the current UTC time.
func DefaultClock() time.Time {
	return time.Now().UTC()
}

// EntityType is the explicit discriminator stored with every record. It must
// agree with the record's sort key prefix.
type EntityType string

const (
	EntityTenant  EntityType = "tenant"  // tenant configuration record
	EntityContext EntityType = "context" // tenant scoped content record
	EntityPage    EntityType = "page"    // stored pagination cursor
)

// Key material for the table's partition and sort keys.
const (
	TenantPrefix        = "TENANT"
	ConfigSortKey       = "CONFIG"
	ContextPrefix       = "CONTEXT"
	PagePrefix          = "PAGE"
	DefaultKeyDelimiter = "#"
)

// Table contains DynamoDB table configuration and marshal options.
type Table struct {
	TableName     string        // Main table name
	KeyDelimiter  string        // Delimiter between key prefix and id. Default is '#'.
	PaginationTTL time.Duration // TTL for pagination cursors stored in table
}

// NewTable creates a new Table with default configuration.
func NewTable(tableName string) *Table {
	return &Table{
		TableName:     tableName,
		KeyDelimiter:  DefaultKeyDelimiter,
		PaginationTTL: 24 * time.Hour,
	}
}

// PartitionKey returns the partition key owning every record of tenantID.
func (t *Table) PartitionKey(tenantID string) string {
	return TenantPrefix + t.KeyDelimiter + tenantID
}

// ContextSortKey returns the sort key of the context entry entryID.
func (t *Table) ContextSortKey(entryID string) string {
	return t.ContextKeyPrefix() + entryID
}

// ContextKeyPrefix returns the exact sort key prefix shared by all context entries.
func (t *Table) ContextKeyPrefix() string {
	return ContextPrefix + t.KeyDelimiter
}

// MarshalOptions contains configuration options for marshaling entities to records.
type MarshalOptions struct {
	TenantID     string        // Owning tenant; becomes the partition key
	Entity       EntityType    // Record shape; selects the sort key layout
	EntryID      string        // Context entry id or page cursor. Unused for tenants.
	TimeToLive   time.Duration // The lifetime of the record
	Created      time.Time     // Creation timestamp
	Updated      time.Time     // Modification timestamp
	Tick         Clock         // Function to get current time for timestamps
	KeyDelimiter string        // Delimiter to join prefix and id into keys
}

func (mo *MarshalOptions) apply(opts []func(*MarshalOptions)) {
	for _, opt := range opts {
		opt(mo)
	}
}

func (mo MarshalOptions) partitionKey() string {
	return TenantPrefix + mo.KeyDelimiter + mo.TenantID
}

func (mo MarshalOptions) sortKey() string {
	switch mo.Entity {
	case EntityTenant:
		return ConfigSortKey
	case EntityContext:
		return ContextPrefix + mo.KeyDelimiter + mo.EntryID
	case EntityPage:
		return PagePrefix + mo.KeyDelimiter + mo.EntryID
	default:
		return ""
	}
}

func newMarshalOptions(opts ...func(*MarshalOptions)) MarshalOptions {
	options := MarshalOptions{
		Tick:         DefaultClock,
		KeyDelimiter: DefaultKeyDelimiter,
	}
	options.apply(opts)
	return options
}

// Record is the stored form of every item in the table. The partition key
// always names the owning tenant; the sort key encodes the entity type:
//
//	| pk          | sk           | entity  |
//	| =========== | ============ | ======= |
//	| TENANT#acme | CONFIG       | tenant  |
//	| TENANT#acme | CONTEXT#hero | context |
//	| TENANT#acme | PAGE#MTc3    | page    |
//
// This layout allows for the following access patterns:
//   - tenant configuration is a point lookup on (TENANT#id, CONFIG)
//   - context entries are a range query on TENANT#id with begins_with CONTEXT#
//   - stored cursors live beside the data they page through
type Record struct {
	PartitionKey string     `dynamodbav:"pk"`                // TENANT#<tenantId>
	SortKey      string     `dynamodbav:"sk"`                // CONFIG, CONTEXT#<id>, PAGE#<cursor>
	Entity       EntityType `dynamodbav:"entity"`            // explicit discriminator
	CreatedAt    time.Time  `dynamodbav:"created_at"`        // creation timestamp
	UpdatedAt    time.Time  `dynamodbav:"updated_at"`        // modification timestamp
	Expires      int64      `dynamodbav:"expires,omitempty"` // time-to-live, unix seconds
	Data         any        `dynamodbav:"data,omitempty"`    // entity payload
}

const (
	AttributeNamePartitionKey = "pk"
	AttributeNameSortKey      = "sk"
	AttributeNameEntity       = "entity"
	AttributeNameCreated      = "created_at"
	AttributeNameUpdated      = "updated_at"
	AttributeNameExpires      = "expires"
	AttributeNameData         = "data"
)

// NewRecord builds a record for data using the keys described by opts.
func NewRecord(data any, opts MarshalOptions) Record {
	if opts.Tick == nil {
		opts.Tick = DefaultClock
	}
	if opts.Created.IsZero() {
		opts.Created = opts.Tick()
	}
	if opts.Updated.IsZero() {
		opts.Updated = opts.Tick()
	}

	rec := Record{
		PartitionKey: opts.partitionKey(),
		SortKey:      opts.sortKey(),
		Entity:       opts.Entity,
		CreatedAt:    opts.Created,
		UpdatedAt:    opts.Updated,
		Data:         data,
	}

	if opts.TimeToLive > 0 {
		rec.Expires = opts.Created.Add(opts.TimeToLive).Unix()
	}

	return rec
}

// Marshaler can marshal itself into record options.
type Marshaler interface {
	// MarshalRecord is invoked by [MarshalRecord]. Implementers set the
	// tenant, entity type and entry id that make up the record keys.
	MarshalRecord(*MarshalOptions) error
}

// DataMarshaler is a Marshaler that stores a payload other than itself.
type DataMarshaler interface {
	Marshaler
	// MarshalData returns the value stored in the record's data attribute.
	MarshalData() (any, error)
}

// Unmarshaler can extract data about itself from the provided Record.
type Unmarshaler interface {
	// UnmarshalRecord is invoked by [UnmarshalRecord] after the payload has
	// been decoded, so implementers can pick up keys and timestamps.
	UnmarshalRecord(*Record) error
}

// MarshalRecord marshals in into a Record and validates the result against the
// key scheme. Records that would break tenant isolation are rejected with
// [ErrInvalidKeyScheme].
func MarshalRecord(in Marshaler, opts ...func(*MarshalOptions)) (Record, error) {
	marshalOpts := newMarshalOptions(opts...)

	if err := in.MarshalRecord(&marshalOpts); err != nil {
		return Record{}, fmt.Errorf("failed to marshal record: %w", err)
	}

	var data any = in
	if dm, ok := in.(DataMarshaler); ok {
		payload, err := dm.MarshalData()
		if err != nil {
			return Record{}, fmt.Errorf("failed to marshal data: %w", err)
		}
		data = payload
	}

	rec := NewRecord(data, marshalOpts)
	if err := ValidateRecord(rec, marshalOpts.KeyDelimiter); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ValidateRecord checks rec against the key scheme: the partition key must be
// TENANT#<tenantId> for a non-empty tenant id, the sort key must be one of the
// known layouts, and the entity discriminator must agree with the sort key.
func ValidateRecord(rec Record, delimiter string) error {
	if _, err := tenantFromPartitionKey(rec.PartitionKey, delimiter); err != nil {
		return err
	}

	entity, err := entityFromSortKey(rec.SortKey, delimiter)
	if err != nil {
		return err
	}

	if entity != rec.Entity {
		return fmt.Errorf("%w: sort key %q belongs to %q, not %q", ErrInvalidKeyScheme, rec.SortKey, entity, rec.Entity)
	}
	return nil
}

// ValidateTenantID reports whether id can be used as partition key material.
func ValidateTenantID(id, delimiter string) error {
	if id == "" {
		return fmt.Errorf("%w: empty tenant id", ErrInvalidKeyScheme)
	}
	if strings.Contains(id, delimiter) {
		return fmt.Errorf("%w: tenant id %q contains delimiter %q", ErrInvalidKeyScheme, id, delimiter)
	}
	return nil
}

func tenantFromPartitionKey(pk, delimiter string) (string, error) {
	prefix := TenantPrefix + delimiter
	if !strings.HasPrefix(pk, prefix) {
		return "", fmt.Errorf("%w: partition key %q lacks %q prefix", ErrInvalidKeyScheme, pk, prefix)
	}
	id := strings.TrimPrefix(pk, prefix)
	if err := ValidateTenantID(id, delimiter); err != nil {
		return "", err
	}
	return id, nil
}

func entityFromSortKey(sk, delimiter string) (EntityType, error) {
	if sk == ConfigSortKey {
		return EntityTenant, nil
	}

	for prefix, entity := range map[string]EntityType{
		ContextPrefix + delimiter: EntityContext,
		PagePrefix + delimiter:    EntityPage,
	} {
		if strings.HasPrefix(sk, prefix) {
			if len(sk) == len(prefix) {
				return "", fmt.Errorf("%w: sort key %q has an empty id", ErrInvalidKeyScheme, sk)
			}
			return entity, nil
		}
	}

	return "", fmt.Errorf("%w: unknown sort key %q", ErrInvalidKeyScheme, sk)
}

// Item is an alias for the dynamodb attribute value map.
type Item = map[string]types.AttributeValue

// UnmarshalRecord unmarshals the entire item to a [Record], then decodes the
// data attribute into out. If out implements [Unmarshaler] it is handed the
// record afterwards.
func UnmarshalRecord(item Item, out any) (Record, error) {
	var rec Record
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return rec, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	if data, ok := item[AttributeNameData]; !ok {
		return rec, fmt.Errorf("data attribute not found")
	} else if err := attributevalue.Unmarshal(data, out); err != nil {
		return rec, fmt.Errorf("failed to unmarshal data: %w", err)
	}

	unmarshaler, ok := out.(Unmarshaler)
	if !ok {
		return rec, nil
	}

	if err := unmarshaler.UnmarshalRecord(&rec); err != nil {
		return rec, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return rec, nil
}

// UnmarshalTableKey extracts and unmarshals the partition and sort keys from a DynamoDB item.
// Returns an error if either key is missing from the item.
func UnmarshalTableKey(item Item) (pk, sk string, err error) {
	var (
		pkv, pkexists = item[AttributeNamePartitionKey]
		skv, skexists = item[AttributeNameSortKey]
	)

	if !pkexists || !skexists {
		return "", "", fmt.Errorf("partition and sort keys not found")
	}

	if err := attributevalue.Unmarshal(pkv, &pk); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal partition key: %w", err)
	}
	if err := attributevalue.Unmarshal(skv, &sk); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal sort key: %w", err)
	}

	return pk, sk, nil
}

// DynamoDBClient interface for easier testing and connection management.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}
