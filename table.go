package tenantmap

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// MaxBatchSize is the maximum number of items allowed in a DynamoDB batch operation.
	MaxBatchSize = 25
)

func (t *Table) options(opts []func(*MarshalOptions)) []func(*MarshalOptions) {
	return append([]func(*MarshalOptions){func(mo *MarshalOptions) {
		mo.KeyDelimiter = t.KeyDelimiter
	}}, opts...)
}

// MarshalRecord marshals in into a validated Record using the table's key delimiter.
func (t *Table) MarshalRecord(in Marshaler, opts ...func(*MarshalOptions)) (Record, error) {
	return MarshalRecord(in, t.options(opts)...)
}

// MarshalPut marshals the input into a dynamodb put item input request.
func (t *Table) MarshalPut(in Marshaler, opts ...func(*MarshalOptions)) (*dynamodb.PutItemInput, error) {
	rec, err := t.MarshalRecord(in, opts...)
	if err != nil {
		return nil, err
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}

	return &dynamodb.PutItemInput{
		TableName: aws.String(t.TableName),
		Item:      item,
	}, nil
}

// MarshalBatch marshals the inputs into multiple batch write put requests. Since there is a
// limit on how many requests can be contained in a single input, the requests are chunked
// in sizes of 25 or less.
func (t *Table) MarshalBatch(in []Marshaler, opts ...func(*MarshalOptions)) ([]*dynamodb.BatchWriteItemInput, error) {
	records := make([]Record, 0, len(in))
	for i, m := range in {
		rec, err := t.MarshalRecord(m, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal item %d: %w", i, err)
		}
		records = append(records, rec)
	}

	var batches []*dynamodb.BatchWriteItemInput

	for i := 0; i < len(records); i += MaxBatchSize {
		end := min(i+MaxBatchSize, len(records))

		var writeRequests []types.WriteRequest
		for _, rec := range records[i:end] {
			item, err := attributevalue.MarshalMap(rec)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal record: %w", err)
			}

			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		batches = append(batches, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				t.TableName: writeRequests,
			},
		})
	}

	return batches, nil
}

// MarshalGet marshals the input into a get item request for its record key.
func (t *Table) MarshalGet(in Marshaler, opts ...func(*MarshalOptions)) (*dynamodb.GetItemInput, error) {
	marshalOpts := newMarshalOptions(t.options(opts)...)

	if err := in.MarshalRecord(&marshalOpts); err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	return &dynamodb.GetItemInput{
		TableName: aws.String(t.TableName),
		Key:       t.key(marshalOpts.partitionKey(), marshalOpts.sortKey()),
	}, nil
}

// MarshalQuery marshals the input into a query item request.
func (t *Table) MarshalQuery(in QueryMarshaler, opts ...func(*MarshalOptions)) (*dynamodb.QueryInput, error) {
	marshalOpts := newMarshalOptions(t.options(opts)...)

	input, err := in.MarshalQuery(&marshalOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	input.TableName = aws.String(t.TableName)
	return input, nil
}

// MarshalCreateTable returns the create table request for the table schema.
// Time-to-live on the expires attribute is enabled separately.
func (t *Table) MarshalCreateTable() *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName: aws.String(t.TableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(AttributeNamePartitionKey),
				AttributeType: types.ScalarAttributeTypeS,
			},
			{
				AttributeName: aws.String(AttributeNameSortKey),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(AttributeNamePartitionKey),
				KeyType:       types.KeyTypeHash,
			},
			{
				AttributeName: aws.String(AttributeNameSortKey),
				KeyType:       types.KeyTypeRange,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	}
}

// MarshalTimeToLive returns the request that enables expiry of stored cursors.
func (t *Table) MarshalTimeToLive() *dynamodb.UpdateTimeToLiveInput {
	return &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(t.TableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: aws.String(AttributeNameExpires),
			Enabled:       aws.Bool(true),
		},
	}
}

func (t *Table) key(pk, sk string) Item {
	return Item{
		AttributeNamePartitionKey: &types.AttributeValueMemberS{Value: pk},
		AttributeNameSortKey:      &types.AttributeValueMemberS{Value: sk},
	}
}
