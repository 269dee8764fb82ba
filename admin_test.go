package tenantmap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type fakeAdmin struct {
	created   *dynamodb.CreateTableInput
	ttl       *dynamodb.UpdateTimeToLiveInput
	createErr error
}

func (f *fakeAdmin) CreateTable(_ context.Context, params *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.created = params
	return &dynamodb.CreateTableOutput{}, f.createErr
}

func (f *fakeAdmin) DescribeTable(_ context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{TableName: params.TableName, TableStatus: types.TableStatusActive},
	}, nil
}

func (f *fakeAdmin) UpdateTimeToLive(_ context.Context, params *dynamodb.UpdateTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	f.ttl = params
	return &dynamodb.UpdateTimeToLiveOutput{}, nil
}

func TestCreateTable(t *testing.T) {
	admin := &fakeAdmin{}
	if err := CreateTable(context.Background(), admin, NewTable("sites"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admin.created == nil || *admin.created.TableName != "sites" {
		t.Errorf("expected the table to be created, got %+v", admin.created)
	}
	if admin.ttl == nil || *admin.ttl.TimeToLiveSpecification.AttributeName != AttributeNameExpires {
		t.Errorf("expected time to live to be enabled, got %+v", admin.ttl)
	}

	failing := &fakeAdmin{createErr: &types.ResourceInUseException{}}
	err := CreateTable(context.Background(), failing, NewTable("sites"), time.Minute)
	var inUse *types.ResourceInUseException
	if !errors.As(err, &inUse) {
		t.Errorf("expected ResourceInUseException, got %v", err)
	}
	if failing.ttl != nil {
		t.Error("time to live must not be touched when creation fails")
	}
}
