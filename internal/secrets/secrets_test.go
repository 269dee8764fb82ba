package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls  atomic.Int32
	values map[string]string
	err    error
	delay  time.Duration
}

func (s *countingSource) Fetch(ctx context.Context, path string) (map[string]string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.values, nil
}

func TestCache_Get(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{values: map[string]string{"k": "v"}}
	cache := NewCache(src, time.Minute)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	got, err := cache.Get(ctx, "secret/aws")
	require.NoError(t, err)
	assert.Equal(t, "v", got["k"])

	got["k"] = "mutated"
	got, err = cache.Get(ctx, "secret/aws")
	require.NoError(t, err)
	assert.Equal(t, "v", got["k"], "cached values must not be shared")
	assert.EqualValues(t, 1, src.calls.Load())

	now = now.Add(time.Minute)
	_, err = cache.Get(ctx, "secret/aws")
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.calls.Load(), "expired entry must be refetched")

	cache.Invalidate("secret/aws")
	_, err = cache.Get(ctx, "secret/aws")
	require.NoError(t, err)
	assert.EqualValues(t, 3, src.calls.Load(), "invalidated entry must be refetched")
}

func TestCache_Errors(t *testing.T) {
	src := &countingSource{err: errors.New("sealed")}
	cache := NewCache(src, time.Minute)

	_, err := cache.Get(context.Background(), "secret/aws")
	assert.Error(t, err)
	_, err = cache.Get(context.Background(), "secret/aws")
	assert.Error(t, err)
	assert.EqualValues(t, 2, src.calls.Load(), "errors are not cached")
}

func TestCache_CoalescesMisses(t *testing.T) {
	src := &countingSource{values: map[string]string{"k": "v"}, delay: 50 * time.Millisecond}
	cache := NewCache(src, 0)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background(), "secret/aws")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, src.calls.Load())
	assert.True(t, cache.Expires("secret/aws").IsZero())
}

type gatedSource struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
	ctxErr  atomic.Value
}

func (s *gatedSource) Fetch(ctx context.Context, path string) (map[string]string, error) {
	s.calls.Add(1)
	close(s.started)
	<-s.release
	if err := ctx.Err(); err != nil {
		s.ctxErr.Store(err)
		return nil, err
	}
	return map[string]string{"k": "v"}, nil
}

func TestCache_CallerCancellationIsNotShared(t *testing.T) {
	src := &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
	cache := NewCache(src, time.Minute)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Get(first, "secret/aws")
		firstErr <- err
	}()
	<-src.started

	type result struct {
		values map[string]string
		err    error
	}
	second := make(chan result, 1)
	go func() {
		values, err := cache.Get(context.Background(), "secret/aws")
		second <- result{values, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "v", res.values["k"])
	assert.Nil(t, src.ctxErr.Load(), "shared fetch must not see the first caller's cancellation")
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestCredentialsProvider(t *testing.T) {
	t.Run("complete secret", func(t *testing.T) {
		src := &countingSource{values: map[string]string{
			KeyAccessKeyID:     "AKIA",
			KeySecretAccessKey: "shh",
			KeySessionToken:    "tok",
		}}
		provider := NewCredentialsProvider(NewCache(src, time.Minute), "secret/aws")

		creds, err := provider.Retrieve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "AKIA", creds.AccessKeyID)
		assert.Equal(t, "shh", creds.SecretAccessKey)
		assert.Equal(t, "tok", creds.SessionToken)
		assert.True(t, creds.CanExpire)
		assert.False(t, creds.Expires.IsZero())
	})

	t.Run("incomplete secret", func(t *testing.T) {
		src := &countingSource{values: map[string]string{KeyAccessKeyID: "AKIA"}}
		provider := NewCredentialsProvider(NewCache(src, time.Minute), "secret/aws")

		_, err := provider.Retrieve(context.Background())
		assert.Error(t, err)
		_, _ = provider.Retrieve(context.Background())
		assert.EqualValues(t, 2, src.calls.Load(), "incomplete secret must not stay cached")
	})
}

func TestVaultSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("X-Vault-Token"))

		switch r.URL.Path {
		case "/v1/secret/data/tenantmap/aws":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"data": map[string]any{
						KeyAccessKeyID:     "AKIA",
						KeySecretAccessKey: "shh",
					},
					"metadata": map[string]any{
						"created_time":  "2026-01-01T00:00:00Z",
						"deletion_time": "",
						"destroyed":     false,
						"version":       1,
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
		}
	}))
	defer srv.Close()

	src, err := NewVaultSource(srv.URL, "test-token")
	require.NoError(t, err)

	values, err := src.Fetch(context.Background(), "secret/tenantmap/aws")
	require.NoError(t, err)
	assert.Equal(t, "AKIA", values[KeyAccessKeyID])
	assert.Equal(t, "shh", values[KeySecretAccessKey])

	_, err = src.Fetch(context.Background(), "secret/tenantmap/missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)

	_, err = src.Fetch(context.Background(), "secret")
	assert.Error(t, err)
}
