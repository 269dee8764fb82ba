package dynamock

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nisimpson/tenantmap"
)

// DynamoDBAPICall is the shape shared by every stubbed operation.
type DynamoDBAPICall[T, U any] = func(context.Context, *T, ...func(*dynamodb.Options)) (*U, error)

// DynamoDBAPI is the client surface a tenantmap.Store talks to.
type DynamoDBAPI = tenantmap.DynamoDBClient

// MockClient stubs each operation with a func field. Any operation left
// unstubbed fails the test.
type MockClient struct {
	PutFunc            DynamoDBAPICall[dynamodb.PutItemInput, dynamodb.PutItemOutput]
	GetFunc            DynamoDBAPICall[dynamodb.GetItemInput, dynamodb.GetItemOutput]
	QueryFunc          DynamoDBAPICall[dynamodb.QueryInput, dynamodb.QueryOutput]
	BatchWriteItemFunc DynamoDBAPICall[dynamodb.BatchWriteItemInput, dynamodb.BatchWriteItemOutput]

	mu    sync.Mutex
	calls map[string]int
}

var _ DynamoDBAPI = (*MockClient)(nil)

// NewMockClient returns a MockClient whose operations all fail t until stubbed.
func NewMockClient(t testing.TB) *MockClient {
	return &MockClient{
		PutFunc:            unstubbed[dynamodb.PutItemInput, dynamodb.PutItemOutput](t, "PutItem"),
		GetFunc:            unstubbed[dynamodb.GetItemInput, dynamodb.GetItemOutput](t, "GetItem"),
		QueryFunc:          unstubbed[dynamodb.QueryInput, dynamodb.QueryOutput](t, "Query"),
		BatchWriteItemFunc: unstubbed[dynamodb.BatchWriteItemInput, dynamodb.BatchWriteItemOutput](t, "BatchWriteItem"),
		calls:              map[string]int{},
	}
}

func unstubbed[T, U any](t testing.TB, op string) DynamoDBAPICall[T, U] {
	return func(context.Context, *T, ...func(*dynamodb.Options)) (*U, error) {
		t.Errorf("unexpected call to %s", op)
		return nil, ErrUnexpectedCall
	}
}

// Returning stubs a call with a fixed result.
func Returning[T, U any](out *U, err error) DynamoDBAPICall[T, U] {
	return func(context.Context, *T, ...func(*dynamodb.Options)) (*U, error) {
		return out, err
	}
}

// Calls reports how many times op was invoked.
func (m *MockClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockClient) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[op]++
}

func (m *MockClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.record("PutItem")
	return m.PutFunc(ctx, in, opts...)
}

func (m *MockClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.record("GetItem")
	return m.GetFunc(ctx, in, opts...)
}

func (m *MockClient) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	m.record("BatchWriteItem")
	return m.BatchWriteItemFunc(ctx, in, opts...)
}

func (m *MockClient) Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.record("Query")
	return m.QueryFunc(ctx, in, opts...)
}
