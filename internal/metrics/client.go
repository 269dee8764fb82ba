package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nisimpson/tenantmap"
)

// Client decorates a DynamoDB client with call counts and latencies.
type Client struct {
	next tenantmap.DynamoDBClient
}

var _ tenantmap.DynamoDBClient = (*Client)(nil)

// Instrument wraps next.
func Instrument(next tenantmap.DynamoDBClient) *Client {
	return &Client{next: next}
}

func observe(op string, start time.Time, err error) {
	StoreRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case err == nil:
	case tenantmap.IsTransient(err):
		outcome = "unavailable"
	default:
		outcome = "error"
	}
	StoreRequestsTotal.WithLabelValues(op, outcome).Inc()
}

func (c *Client) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	start := time.Now()
	out, err := c.next.PutItem(ctx, params, optFns...)
	observe("PutItem", start, err)
	return out, err
}

func (c *Client) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	start := time.Now()
	out, err := c.next.GetItem(ctx, params, optFns...)
	observe("GetItem", start, err)
	return out, err
}

func (c *Client) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	start := time.Now()
	out, err := c.next.BatchWriteItem(ctx, params, optFns...)
	observe("BatchWriteItem", start, err)
	return out, err
}

func (c *Client) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	start := time.Now()
	out, err := c.next.Query(ctx, params, optFns...)
	observe("Query", start, err)
	return out, err
}
