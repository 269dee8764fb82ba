package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Keys read from the credentials secret.
const (
	KeyAccessKeyID     = "access_key_id"
	KeySecretAccessKey = "secret_access_key"
	KeySessionToken    = "session_token"
)

// CredentialsProvider serves AWS credentials from a cached secret.
type CredentialsProvider struct {
	cache *Cache
	path  string
}

var _ aws.CredentialsProvider = (*CredentialsProvider)(nil)

// NewCredentialsProvider reads credentials from path through cache.
func NewCredentialsProvider(cache *Cache, path string) *CredentialsProvider {
	return &CredentialsProvider{cache: cache, path: path}
}

// Retrieve implements aws.CredentialsProvider. The credentials expire with
// the cache entry, so the SDK asks again once the secret may have rotated.
func (p *CredentialsProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	values, err := p.cache.Get(ctx, p.path)
	if err != nil {
		return aws.Credentials{}, err
	}

	creds := aws.Credentials{
		AccessKeyID:     values[KeyAccessKeyID],
		SecretAccessKey: values[KeySecretAccessKey],
		SessionToken:    values[KeySessionToken],
		Source:          "vault:" + p.path,
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		p.cache.Invalidate(p.path)
		return aws.Credentials{}, fmt.Errorf("secret %s lacks %s or %s", p.path, KeyAccessKeyID, KeySecretAccessKey)
	}

	if expires := p.cache.Expires(p.path); !expires.IsZero() {
		creds.CanExpire = true
		creds.Expires = expires
	}
	return creds, nil
}
