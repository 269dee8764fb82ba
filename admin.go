package tenantmap

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// TableAdmin is the subset of the DynamoDB API needed to provision a table.
type TableAdmin interface {
	dynamodb.DescribeTableAPIClient
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

// CreateTable creates the table, waits up to maxWait for it to become active
// and enables time-to-live on the expires attribute so stored cursors age out.
func CreateTable(ctx context.Context, client TableAdmin, table *Table, maxWait time.Duration) error {
	if _, err := client.CreateTable(ctx, table.MarshalCreateTable()); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.TableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table.TableName)}, maxWait); err != nil {
		return fmt.Errorf("table %s did not become active: %w", table.TableName, err)
	}

	if _, err := client.UpdateTimeToLive(ctx, table.MarshalTimeToLive()); err != nil {
		return fmt.Errorf("failed to enable time to live on %s: %w", table.TableName, err)
	}
	return nil
}
