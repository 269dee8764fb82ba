package tenantmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/nisimpson/tenantmap"

// ListOptions configures a context entry listing.
type ListOptions struct {
	Prefix string // Sort key prefix; defaults to CONTEXT#. Must start with CONTEXT#.
	Cursor string // Cursor returned by a previous page; empty for the first page
	Limit  int    // Maximum number of entries per page; 0 lets DynamoDB decide
}

// ContextPage is one page of context entries.
type ContextPage struct {
	Items      []ContextEntry
	NextCursor string // Empty when there are no more entries
}

// Store reads and writes tenant records in a single table.
type Store struct {
	table     *Table
	client    DynamoDBClient
	paginator Paginator
	tracer    trace.Tracer
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPaginator overrides the default table backed paginator.
func WithPaginator(p Paginator) StoreOption {
	return func(s *Store) {
		s.paginator = p
	}
}

// WithTracerProvider sets the tracer provider used for store spans.
func WithTracerProvider(tp trace.TracerProvider) StoreOption {
	return func(s *Store) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// NewStore returns a Store for table backed by client.
func NewStore(client DynamoDBClient, table *Table, opts ...StoreOption) *Store {
	s := &Store{
		table:  table,
		client: client,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.paginator == nil {
		s.paginator = table.Paginator(client)
	}
	return s
}

// Table returns the table configuration.
func (s *Store) Table() *Table { return s.table }

// GetTenantConfig returns the configuration record of tenantID using a point
// lookup. It returns ErrNotFound for an unknown tenant and wraps transient
// failures with ErrStoreUnavailable.
func (s *Store) GetTenantConfig(ctx context.Context, tenantID string) (*Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenantmap.GetTenantConfig",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)))
	defer span.End()

	tenant, err := s.getTenantConfig(ctx, tenantID)
	recordSpanError(span, err)
	return tenant, err
}

func (s *Store) getTenantConfig(ctx context.Context, tenantID string) (*Tenant, error) {
	if ValidateTenantID(tenantID, s.table.KeyDelimiter) != nil {
		// a malformed id can never have been written
		return nil, ErrNotFound
	}

	getInput, err := s.table.MarshalGet(&Tenant{ID: tenantID})
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetItem(ctx, getInput)
	if err != nil {
		return nil, wrapStoreError("get tenant config", err)
	}

	if len(result.Item) == 0 {
		return nil, ErrNotFound
	}

	var tenant Tenant
	rec, err := UnmarshalRecord(result.Item, &tenant)
	if err != nil {
		return nil, err
	}
	if err := ValidateRecord(rec, s.table.KeyDelimiter); err != nil {
		return nil, err
	}
	if tenant.ID != tenantID {
		return nil, fmt.Errorf("%w: record under %q names tenant %q", ErrInvalidKeyScheme, rec.PartitionKey, tenant.ID)
	}

	return &tenant, nil
}

// ListContextEntries returns one page of tenantID's context entries using a
// range query on the tenant's partition. An unknown tenant yields an empty
// page, not an error.
func (s *Store) ListContextEntries(ctx context.Context, tenantID string, opts ListOptions) (*ContextPage, error) {
	ctx, span := s.tracer.Start(ctx, "tenantmap.ListContextEntries",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.Bool("page.continued", opts.Cursor != ""),
		))
	defer span.End()

	page, err := s.listContextEntries(ctx, tenantID, opts)
	recordSpanError(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("page.items", len(page.Items)))
	}
	return page, err
}

func (s *Store) listContextEntries(ctx context.Context, tenantID string, opts ListOptions) (*ContextPage, error) {
	if ValidateTenantID(tenantID, s.table.KeyDelimiter) != nil {
		return &ContextPage{}, nil
	}

	contextPrefix := s.table.ContextKeyPrefix()
	prefix := opts.Prefix
	if prefix == "" {
		prefix = contextPrefix
	}
	if !strings.HasPrefix(prefix, contextPrefix) {
		return nil, fmt.Errorf("%w: prefix %q must start with %q", ErrInvalidKeyScheme, prefix, contextPrefix)
	}

	startKey, err := s.paginator.StartKey(ctx, tenantID, opts.Cursor)
	if err != nil {
		return nil, err
	}

	queryInput, err := s.table.MarshalQuery(&QueryPartition{
		TenantID:      tenantID,
		SortKeyPrefix: prefix,
		Limit:         opts.Limit,
		StartKey:      startKey,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.client.Query(ctx, queryInput)
	if err != nil {
		return nil, wrapStoreError("query context entries", err)
	}

	pk := s.table.PartitionKey(tenantID)
	page := &ContextPage{Items: make([]ContextEntry, 0, len(result.Items))}

	for i, item := range result.Items {
		itemPK, sk, err := UnmarshalTableKey(item)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal item %d: %w", i, err)
		}
		if itemPK != pk {
			return nil, fmt.Errorf("%w: item %q returned for partition %q", ErrInvalidKeyScheme, itemPK, pk)
		}
		// exact prefix match only; anything else is not a context entry
		if !strings.HasPrefix(sk, contextPrefix) {
			continue
		}

		entry, err := s.unmarshalContextEntry(item, tenantID, sk)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal item %d: %w", i, err)
		}
		page.Items = append(page.Items, entry)
	}

	page.NextCursor, err = s.paginator.PageCursor(ctx, tenantID, result.LastEvaluatedKey)
	if err != nil {
		return nil, err
	}

	return page, nil
}

func (s *Store) unmarshalContextEntry(item Item, tenantID, sk string) (ContextEntry, error) {
	var rec Record
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return ContextEntry{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	if err := ValidateRecord(rec, s.table.KeyDelimiter); err != nil {
		return ContextEntry{}, err
	}

	entry := ContextEntry{
		TenantID:  tenantID,
		ID:        strings.TrimPrefix(sk, s.table.ContextKeyPrefix()),
		Data:      map[string]any{},
		UpdatedAt: rec.UpdatedAt,
	}

	if data, ok := item[AttributeNameData]; ok {
		if err := attributevalue.Unmarshal(data, &entry.Data); err != nil {
			return ContextEntry{}, fmt.Errorf("failed to unmarshal data: %w", err)
		}
	}

	return entry, nil
}

// PutTenant writes the tenant configuration record. Keys are validated
// before the write.
func (s *Store) PutTenant(ctx context.Context, tenant *Tenant) error {
	return s.put(ctx, "put tenant", tenant)
}

// PutContextEntry writes a context entry record. Keys are validated before
// the write.
func (s *Store) PutContextEntry(ctx context.Context, entry *ContextEntry) error {
	return s.put(ctx, "put context entry", entry)
}

func (s *Store) put(ctx context.Context, op string, in Marshaler) error {
	putInput, err := s.table.MarshalPut(in)
	if err != nil {
		return err
	}

	if _, err := s.client.PutItem(ctx, putInput); err != nil {
		return wrapStoreError(op, err)
	}
	return nil
}

// BatchPut writes records in chunks of MaxBatchSize, resending unprocessed
// items with exponential backoff. Every record is validated before the first
// write is sent.
func (s *Store) BatchPut(ctx context.Context, in ...Marshaler) error {
	batches, err := s.table.MarshalBatch(in)
	if err != nil {
		return err
	}

	for _, batch := range batches {
		if err := s.writeBatch(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeBatch(ctx context.Context, batch *dynamodb.BatchWriteItemInput) error {
	pending := batch.RequestItems

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 50 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, 5), ctx)

	return backoff.Retry(func() error {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			err = wrapStoreError("batch write", err)
			if IsUnavailable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if countRequests(out.UnprocessedItems) == 0 {
			return nil
		}
		pending = out.UnprocessedItems
		return fmt.Errorf("%w: %d unprocessed items", ErrStoreUnavailable, countRequests(pending))
	}, policy)
}

func countRequests(items map[string][]types.WriteRequest) int {
	n := 0
	for _, reqs := range items {
		n += len(reqs)
	}
	return n
}

func recordSpanError(span trace.Span, err error) {
	if err == nil || errors.Is(err, ErrNotFound) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
