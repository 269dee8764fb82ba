// Package config builds the service configuration from defaults, an optional
// YAML file, an optional .env file and TENANTMAP_ environment variables.
package config

import "time"

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
	RetryBackoff    time.Duration `koanf:"retry_backoff"    validate:"gte=0"`
}

// DynamoDB selects the table and how to reach it.
type DynamoDB struct {
	Table      string        `koanf:"table"      validate:"required"`
	Region     string        `koanf:"region"`
	Endpoint   string        `koanf:"endpoint"   validate:"omitempty,url"`
	Pagination string        `koanf:"pagination" validate:"oneof=table encoded"`
	CursorTTL  time.Duration `koanf:"cursor_ttl" validate:"gt=0"`
}

// Registry configures the country pack registry.
type Registry struct {
	DefaultCountry string `koanf:"default_country" validate:"len=2,alpha"`
}

// Log configures the zap logger. An empty Dir logs to stdout only.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	Tee   bool   `koanf:"tee"`
}

// Tracing enables the stdout span exporter.
type Tracing struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name" validate:"required"`
}

// Vault points at the KV v2 secret holding AWS credentials. The secret must
// carry access_key_id and secret_access_key, and may carry session_token.
type Vault struct {
	Enabled bool          `koanf:"enabled"`
	Path    string        `koanf:"path" validate:"required_if=Enabled true"`
	TTL     time.Duration `koanf:"ttl"  validate:"gte=0"`
}

// Config is the immutable aggregate returned by Load.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	DynamoDB DynamoDB `koanf:"dynamodb"`
	Registry Registry `koanf:"registry"`
	Log      Log      `koanf:"log"`
	Tracing  Tracing  `koanf:"tracing"`
	Vault    Vault    `koanf:"vault"`
}
