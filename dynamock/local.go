package dynamock

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nisimpson/tenantmap"
)

// DefaultLocalPort is the port DynamoDB Local listens on out of the box.
const DefaultLocalPort = 8000

// tableWait bounds how long table lifecycle calls wait for the table state to settle.
const tableWait = 30 * time.Second

// LocalDynamoDB is a client bound to a DynamoDB Local instance.
type LocalDynamoDB struct {
	Client   *dynamodb.Client
	Endpoint string
	Port     int
}

// NewLocalClient creates a DynamoDB client configured to connect to a local
// DynamoDB instance on port.
//
//	client := dynamock.NewLocalClient(8000)
func NewLocalClient(port int) *dynamodb.Client {
	return NewLocalClientFromConfig(aws.Config{Region: "us-east-1"}, port)
}

// NewLocalClientFromConfig creates a local DynamoDB client from cfg, with the
// endpoint pointed at localhost and anonymous credentials.
func NewLocalClientFromConfig(cfg aws.Config, port int) *dynamodb.Client {
	endpoint := fmt.Sprintf("http://localhost:%d", port)
	cfg.Credentials = aws.AnonymousCredentials{}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
}

// NewLocalDynamoDB connects to DynamoDB Local on localhost:port.
func NewLocalDynamoDB(port int) *LocalDynamoDB {
	return &LocalDynamoDB{
		Client:   NewLocalClient(port),
		Endpoint: fmt.Sprintf("http://localhost:%d", port),
		Port:     port,
	}
}

// IsAvailable reports whether DynamoDB Local accepts connections and answers
// a ListTables call within two seconds.
func (l *LocalDynamoDB) IsAvailable(ctx context.Context) bool {
	var d net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	conn, err := d.DialContext(dialCtx, "tcp", net.JoinHostPort("localhost", strconv.Itoa(l.Port)))
	if err != nil {
		return false
	}
	_ = conn.Close()

	_, err = l.Client.ListTables(dialCtx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	return err == nil
}

// CreateTable creates table with the tenant store schema, waits for it to
// become active and enables cursor expiry.
func (l *LocalDynamoDB) CreateTable(ctx context.Context, table *tenantmap.Table) error {
	return tenantmap.CreateTable(ctx, l.Client, table, tableWait)
}

// DeleteTable drops tableName and blocks until DynamoDB Local no longer
// describes it.
func (l *LocalDynamoDB) DeleteTable(ctx context.Context, tableName string) error {
	name := aws.String(tableName)
	if _, err := l.Client.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: name}); err != nil {
		return fmt.Errorf("dynamock: delete %s: %w", tableName, err)
	}
	return dynamodb.NewTableNotExistsWaiter(l.Client).Wait(ctx, &dynamodb.DescribeTableInput{TableName: name}, tableWait)
}
