package tenantmap

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Paginator handles pagination by converting last evaluated keys into string
// cursors for clients, and in turn converting client cursors into start keys
// to continue paging of query results. Cursors are scoped to the tenant that
// requested them.
type Paginator interface {
	// PageCursor generates a string token from the provided last key. Implementors
	// should return an empty token if the last key is nil or empty.
	PageCursor(ctx context.Context, tenantID string, lastkey Item) (string, error)
	// StartKey generates a dynamodb start key from the provided cursor. Implementors
	// should return a nil item if the cursor is an empty string.
	StartKey(ctx context.Context, tenantID string, cursor string) (Item, error)
}

// pageKey is the portable form of a last evaluated key.
type pageKey struct {
	PartitionKey string `json:"pk" dynamodbav:"pk"`
	SortKey      string `json:"sk" dynamodbav:"sk"`
}

func newPageKey(item Item) (pageKey, error) {
	pk, sk, err := UnmarshalTableKey(item)
	if err != nil {
		return pageKey{}, err
	}
	return pageKey{PartitionKey: pk, SortKey: sk}, nil
}

func (k pageKey) item() Item {
	return Item{
		AttributeNamePartitionKey: &types.AttributeValueMemberS{Value: k.PartitionKey},
		AttributeNameSortKey:      &types.AttributeValueMemberS{Value: k.SortKey},
	}
}

// TablePaginator implements Paginator by storing last evaluated keys in the
// requesting tenant's own partition, so a cursor minted for one tenant is
// invisible to every other tenant.
type TablePaginator struct {
	table  *Table         // table configuration
	client DynamoDBClient // dynamodb client
}

// PageCursor represents an item in the dynamodb table that stores last evaluated key
// information from query results. Cursor is generated from the current time and salt.
//
// PageCursor implements Marshaler and Unmarshaler.
type PageCursor struct {
	TenantID string  `dynamodbav:"-"`
	Cursor   string  `dynamodbav:"cursor"`
	Key      pageKey `dynamodbav:"key"`
}

// MarshalRecord implements Marshaler with a record in the tenant's partition:
//   - sort key: PAGE#<cursor>
//   - ttl: 24 hours (default)
func (p *PageCursor) MarshalRecord(opts *MarshalOptions) error {
	if err := ValidateTenantID(p.TenantID, opts.KeyDelimiter); err != nil {
		return err
	}
	if p.Cursor == "" {
		return fmt.Errorf("%w: empty cursor", ErrInvalidCursor)
	}
	opts.TenantID = p.TenantID
	opts.Entity = EntityPage
	opts.EntryID = p.Cursor
	if opts.TimeToLive == 0 {
		opts.TimeToLive = 24 * time.Hour
	}
	return nil
}

// UnmarshalRecord implements Unmarshaler.
func (p *PageCursor) UnmarshalRecord(rec *Record) error {
	if rec.Entity != EntityPage {
		return fmt.Errorf("%w: expected %q record, got %q", ErrInvalidKeyScheme, EntityPage, rec.Entity)
	}
	return nil
}

// PageCursor implements Paginator by storing the last evaluated key into the dynamodb table.
// If lastkey is nil, an empty string is returned.
func (t *TablePaginator) PageCursor(ctx context.Context, tenantID string, lastkey Item) (string, error) {
	if len(lastkey) == 0 {
		return "", nil
	}

	key, err := newPageKey(lastkey)
	if err != nil {
		return "", fmt.Errorf("failed to read last key: %w", err)
	}

	cursor, err := generateCursor()
	if err != nil {
		return "", fmt.Errorf("failed to generate cursor: %w", err)
	}

	pageCursor := &PageCursor{
		TenantID: tenantID,
		Cursor:   cursor,
		Key:      key,
	}

	putInput, err := t.table.MarshalPut(pageCursor, func(opts *MarshalOptions) {
		opts.TimeToLive = t.table.PaginationTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal page cursor: %w", err)
	}

	if _, err := t.client.PutItem(ctx, putInput); err != nil {
		return "", wrapStoreError("store page cursor", err)
	}

	return cursor, nil
}

// StartKey implements Paginator by retrieving the cursor record from the
// tenant's partition. If the cursor is malformed, or its record is not found
// or has expired, nil is returned and paging restarts from the beginning.
func (t *TablePaginator) StartKey(ctx context.Context, tenantID string, cursor string) (Item, error) {
	if cursor == "" {
		return nil, nil
	}
	// anything generateCursor could not have minted is unknown; it must not
	// reach the sort key, where an oversized value fails validation
	if !isStoredCursor(cursor) {
		return nil, nil
	}

	pageCursor := &PageCursor{TenantID: tenantID, Cursor: cursor}

	getInput, err := t.table.MarshalGet(pageCursor)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal get request: %w", err)
	}

	result, err := t.client.GetItem(ctx, getInput)
	if err != nil {
		return nil, wrapStoreError("get page cursor", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	rec, err := UnmarshalRecord(result.Item, pageCursor)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal page cursor: %w", err)
	}

	// expired items linger until the TTL sweeper removes them
	if rec.Expires > 0 && time.Unix(rec.Expires, 0).Before(time.Now()) {
		return nil, nil
	}

	if pageCursor.Key.PartitionKey != t.table.PartitionKey(tenantID) {
		return nil, fmt.Errorf("%w: cursor belongs to another partition", ErrInvalidCursor)
	}

	return pageCursor.Key.item(), nil
}

// Paginator returns a Paginator that stores cursors in the table.
func (t *Table) Paginator(client DynamoDBClient) Paginator {
	return &TablePaginator{
		table:  t,
		client: client,
	}
}

// EncodedPaginator implements Paginator without storage by encoding the last
// evaluated key into the cursor itself. Decoded keys are checked against the
// requesting tenant's partition.
type EncodedPaginator struct {
	table *Table
}

// EncodedPaginator returns a stateless Paginator for read-only deployments.
func (t *Table) EncodedPaginator() Paginator {
	return &EncodedPaginator{table: t}
}

// PageCursor implements Paginator.
func (e *EncodedPaginator) PageCursor(_ context.Context, tenantID string, lastkey Item) (string, error) {
	if len(lastkey) == 0 {
		return "", nil
	}

	key, err := newPageKey(lastkey)
	if err != nil {
		return "", fmt.Errorf("failed to read last key: %w", err)
	}
	if key.PartitionKey != e.table.PartitionKey(tenantID) {
		return "", fmt.Errorf("%w: last key belongs to another partition", ErrInvalidCursor)
	}

	raw, err := json.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("failed to encode last key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// StartKey implements Paginator.
func (e *EncodedPaginator) StartKey(_ context.Context, tenantID string, cursor string) (Item, error) {
	if cursor == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}

	var key pageKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}

	if key.PartitionKey != e.table.PartitionKey(tenantID) || key.SortKey == "" {
		return nil, fmt.Errorf("%w: cursor belongs to another partition", ErrInvalidCursor)
	}

	return key.item(), nil
}

// generateCursor creates a unique cursor string using current time and random bytes
func generateCursor() (string, error) {
	timestamp := time.Now().UnixNano()

	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	combined := fmt.Sprintf("%d_%s", timestamp, base64.RawURLEncoding.EncodeToString(randomBytes))

	return base64.RawURLEncoding.EncodeToString([]byte(combined)), nil
}

// maxStoredCursorLen leaves ample room above the length generateCursor produces.
const maxStoredCursorLen = 64

// isStoredCursor reports whether cursor has the shape generateCursor emits:
// short unpadded base64url.
func isStoredCursor(cursor string) bool {
	if len(cursor) > maxStoredCursorLen {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(cursor)
	return err == nil
}
