package minio

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/docvault/document"
)

// setupTestClient 仅在设置了 MINIO_ENDPOINT 时运行集成测试
func setupTestClient(t *testing.T) *Client {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" || testing.Short() {
		t.Skip("skipping integration test: MINIO_ENDPOINT not set")
	}

	client, err := New(Config{
		Endpoint:        endpoint,
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		Bucket:          "docvault-test",
		CreateBucket:    true,
		RequestTimeout:  10 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	valid := Config{Endpoint: "localhost:9000", AccessKeyID: "ak", SecretAccessKey: "sk"}

	client, err := New(valid)
	require.NoError(t, err)
	assert.Equal(t, "documents", client.Bucket())
	assert.Equal(t, 30*time.Second, client.config.RequestTimeout)
	assert.NoError(t, client.Close())

	for name, mutate := range map[string]func(*Config){
		"empty endpoint":   func(c *Config) { c.Endpoint = "" },
		"empty access key": func(c *Config) { c.AccessKeyID = "" },
		"empty secret key": func(c *Config) { c.SecretAccessKey = "" },
		"negative timeout": func(c *Config) { c.RequestTimeout = -time.Second },
		"bad endpoint":     func(c *Config) { c.Endpoint = "http://localhost:9000/path" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestEmptyObjectName(t *testing.T) {
	client, err := New(Config{Endpoint: "localhost:9000", AccessKeyID: "ak", SecretAccessKey: "sk"})
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, client.Put(ctx, "", nil), ErrEmptyObjectName)
	_, err = client.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyObjectName)
	assert.ErrorIs(t, client.Delete(ctx, ""), ErrEmptyObjectName)
}

func TestObjectOperations(t *testing.T) {
	client := setupTestClient(t)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.EnsureBucket(ctx))
	require.NoError(t, client.EnsureBucket(ctx))
	require.NoError(t, client.Ping(ctx))

	name := uuid.NewString() + ".bin"
	require.NoError(t, client.Put(ctx, name, []byte("ciphertext")))

	exists, err := client.Exists(ctx, name)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := client.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), data)

	require.NoError(t, client.Delete(ctx, name))
	require.NoError(t, client.Delete(ctx, name))

	_, err = client.Get(ctx, name)
	assert.ErrorIs(t, err, document.ErrBlobNotFound)
}
