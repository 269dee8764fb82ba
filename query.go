package tenantmap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// QueryMarshaler can marshal input into a dynamodb query request.
type QueryMarshaler interface {
	MarshalQuery(*MarshalOptions) (*dynamodb.QueryInput, error)
}

// QueryPartition is a QueryMarshaler that searches within one tenant's
// partition. The partition key is always part of the key condition, so a
// query can never return another tenant's records.
type QueryPartition struct {
	TenantID        string                      // The owning tenant
	SortKeyPrefix   string                      // Optional begins_with filter on the sort key
	ConditionFilter expression.ConditionBuilder // Optional filters on the record
	Limit           int                         // Maximum number of items to return
	StartKey        Item                        // Exclusive start key for pagination
	SortDescending  bool                        // If true, scans backward
}

// MarshalQuery implements QueryMarshaler for QueryPartition.
func (q *QueryPartition) MarshalQuery(opts *MarshalOptions) (*dynamodb.QueryInput, error) {
	if err := ValidateTenantID(q.TenantID, opts.KeyDelimiter); err != nil {
		return nil, err
	}

	partitionOpts := *opts
	partitionOpts.TenantID = q.TenantID
	pk := partitionOpts.partitionKey()

	if q.StartKey != nil {
		startPK, _, err := UnmarshalTableKey(q.StartKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCursor, err)
		}
		if startPK != pk {
			return nil, fmt.Errorf("%w: start key belongs to another partition", ErrInvalidCursor)
		}
	}

	keyCondition := expression.Key(AttributeNamePartitionKey).Equal(expression.Value(pk))

	if q.SortKeyPrefix != "" {
		keyCondition = keyCondition.And(expression.Key(AttributeNameSortKey).BeginsWith(q.SortKeyPrefix))
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCondition)

	if q.ConditionFilter.IsSet() {
		builder = builder.WithFilter(q.ConditionFilter)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!q.SortDescending),
	}

	if q.ConditionFilter.IsSet() {
		input.FilterExpression = expr.Filter()
	}

	if q.Limit > 0 {
		input.Limit = aws.Int32(int32(q.Limit))
	}

	if q.StartKey != nil {
		input.ExclusiveStartKey = q.StartKey
	}

	return input, nil
}
