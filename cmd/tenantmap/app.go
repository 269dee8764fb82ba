package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nisimpson/tenantmap"
	"github.com/nisimpson/tenantmap/countrypack"
	"github.com/nisimpson/tenantmap/internal/config"
	"github.com/nisimpson/tenantmap/internal/logger"
	"github.com/nisimpson/tenantmap/internal/metrics"
	"github.com/nisimpson/tenantmap/internal/secrets"
	"github.com/nisimpson/tenantmap/internal/telemetry"
	"github.com/nisimpson/tenantmap/siteconfig"
	"go.uber.org/zap"
)

// app holds everything a command needs, built once from the configuration.
type app struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	client   *dynamodb.Client
	table    *tenantmap.Table
	store    *tenantmap.Store
	registry *countrypack.Registry
	resolver *siteconfig.Resolver
	shutdown func(context.Context) error
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Dir:   cfg.Log.Dir,
		Level: cfg.Log.Level,
		Tee:   cfg.Log.Tee,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		shutdown: func(context.Context) error { return nil },
	}

	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.InitTracer(cfg.Tracing.ServiceName, nil, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		a.shutdown = shutdown
	}

	a.client, err = newDynamoDBClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a.table = tenantmap.NewTable(cfg.DynamoDB.Table)
	a.table.PaginationTTL = cfg.DynamoDB.CursorTTL

	instrumented := metrics.Instrument(a.client)
	opts := []tenantmap.StoreOption{}
	if cfg.DynamoDB.Pagination == "encoded" {
		opts = append(opts, tenantmap.WithPaginator(a.table.EncodedPaginator()))
	}
	a.store = tenantmap.NewStore(instrumented, a.table, opts...)

	a.registry, err = countrypack.New(cfg.Registry.DefaultCountry)
	if err != nil {
		return nil, err
	}
	a.resolver = siteconfig.NewResolver(a.store, a.registry)

	log.Infow("tenantmap configured",
		"table", cfg.DynamoDB.Table,
		"pagination", cfg.DynamoDB.Pagination,
		"default_country", a.registry.DefaultCode(),
		"vault", cfg.Vault.Enabled,
	)
	return a, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.shutdown(ctx); err != nil {
		a.log.Warnw("failed to flush traces", "error", err)
	}
	_ = a.log.Sync()
}

// newDynamoDBClient loads the default AWS configuration, swapping in Vault
// sourced credentials and a custom endpoint when configured.
func newDynamoDBClient(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*dynamodb.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.DynamoDB.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.DynamoDB.Region))
	}

	if cfg.Vault.Enabled {
		source, err := secrets.NewVaultSource("", "")
		if err != nil {
			return nil, err
		}
		cache := secrets.NewCache(source, cfg.Vault.TTL)
		provider := secrets.NewCredentialsProvider(cache, cfg.Vault.Path)
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(aws.NewCredentialsCache(provider)))
		log.Infow("reading AWS credentials from vault", "path", cfg.Vault.Path, "ttl", cfg.Vault.TTL)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDB.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		}
	}), nil
}
