package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientWithConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClientWithConfig(context.Background(), ClientConfig{
		URL:         "redis://" + mr.Addr() + "/0",
		PoolSize:    4,
		DialTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, 4, client.Options().PoolSize)
	assert.Equal(t, time.Second, client.Options().DialTimeout)
	require.NoError(t, client.Set(context.Background(), "lock:period:2025-04", "x", 0).Err())
	assert.True(t, mr.Exists("lock:period:2025-04"))
}

func TestOptionsKeepURLDefaults(t *testing.T) {
	opts, err := options(ClientConfig{URL: "redis://localhost:6380/2"})
	require.NoError(t, err)

	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Zero(t, opts.PoolSize)
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	assert.ErrorContains(t, err, "parse redis URL")
}

func TestNewClientServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	url := "redis://" + mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), url)
	assert.ErrorContains(t, err, "ping redis")
}
