// Package secrets reads credentials from Vault and caches them for the
// lifetime of a TTL. The cache is the only process-wide mutable state the
// service owns.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// ErrSecretNotFound is returned when a path holds no secret.
var ErrSecretNotFound = errors.New("secret not found")

// Source reads the key/value pairs stored at a path.
type Source interface {
	Fetch(ctx context.Context, path string) (map[string]string, error)
}

// VaultSource reads KV v2 secrets. Paths are "<mount>/<path>", for example
// "secret/tenantmap/aws".
type VaultSource struct {
	api *vault.Client
}

// NewVaultSource builds a client from the VAULT_* environment, optionally
// overriding the address and token.
func NewVaultSource(addr, token string) (*VaultSource, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to read vault environment: %w", err)
	}
	if addr != "" {
		cfg.Address = addr
	}

	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if token != "" {
		api.SetToken(token)
	}

	return &VaultSource{api: api}, nil
}

// Fetch implements Source. Non-string values are rejected.
func (v *VaultSource) Fetch(ctx context.Context, path string) (map[string]string, error) {
	mount, rel := splitMount(path)
	if mount == "" || rel == "" {
		return nil, fmt.Errorf("invalid secret path %q", path)
	}

	sec, err := v.api.KVv2(mount).Get(ctx, rel)
	if errors.Is(err, vault.ErrSecretNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secret %s: %w", path, err)
	}

	out := make(map[string]string, len(sec.Data))
	for key, raw := range sec.Data {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("value at %s#%s is not a string", path, key)
		}
		out[key] = s
	}
	return out, nil
}

func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(strings.Trim(p, "/"), "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
