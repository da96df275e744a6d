package keypair

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileManager(t *testing.T, opts ...func(*KeyOption)) (*Manager, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "nested", "keys")
	m, err := NewManager(NewFileStore(dir), opts...)
	require.NoError(t, err)
	return m, dir
}

func TestEnsureKeyPairExistsCreatesParentDirs(t *testing.T) {
	m, dir := newFileManager(t)
	ctx := context.Background()

	require.NoError(t, m.EnsureKeyPairExists(ctx))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	priv, err := os.Stat(filepath.Join(dir, "private.pem"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), priv.Mode().Perm())

	_, err = os.Stat(filepath.Join(dir, "public.pem"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temporary files must not be left behind")
}

func TestEnsureKeyPairExistsIsIdempotent(t *testing.T) {
	m, dir := newFileManager(t)
	ctx := context.Background()

	require.NoError(t, m.EnsureKeyPairExists(ctx))
	priv1, err := os.ReadFile(filepath.Join(dir, "private.pem"))
	require.NoError(t, err)
	pub1, err := os.ReadFile(filepath.Join(dir, "public.pem"))
	require.NoError(t, err)

	require.NoError(t, m.EnsureKeyPairExists(ctx))
	priv2, err := os.ReadFile(filepath.Join(dir, "private.pem"))
	require.NoError(t, err)
	pub2, err := os.ReadFile(filepath.Join(dir, "public.pem"))
	require.NoError(t, err)

	assert.Equal(t, priv1, priv2)
	assert.Equal(t, pub1, pub2)
}

func TestEnsureKeyPairExistsDerivesMissingPublicKey(t *testing.T) {
	m, dir := newFileManager(t)
	ctx := context.Background()
	require.NoError(t, m.EnsureKeyPairExists(ctx))

	priv1, err := os.ReadFile(filepath.Join(dir, "private.pem"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "public.pem")))

	require.NoError(t, m.EnsureKeyPairExists(ctx))

	priv2, err := os.ReadFile(filepath.Join(dir, "private.pem"))
	require.NoError(t, err)
	assert.Equal(t, priv1, priv2)

	priv, err := m.LoadPrivateKey(ctx)
	require.NoError(t, err)
	pub, err := m.LoadPublicKey(ctx)
	require.NoError(t, err)
	assert.True(t, priv.PublicKey.Equal(pub))
}

func TestEnsureKeyPairExistsRegeneratesWithoutPrivateKey(t *testing.T) {
	m, dir := newFileManager(t)
	ctx := context.Background()
	require.NoError(t, m.EnsureKeyPairExists(ctx))

	pub1, err := os.ReadFile(filepath.Join(dir, "public.pem"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "private.pem")))

	require.NoError(t, m.EnsureKeyPairExists(ctx))

	pub2, err := os.ReadFile(filepath.Join(dir, "public.pem"))
	require.NoError(t, err)
	assert.NotEqual(t, pub1, pub2)

	priv, err := m.LoadPrivateKey(ctx)
	require.NoError(t, err)
	pub, err := m.LoadPublicKey(ctx)
	require.NoError(t, err)
	assert.True(t, priv.PublicKey.Equal(pub))
}

func TestLoadKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		m, _ := newFileManager(t)
		_, err := m.LoadPublicKey(ctx)
		assert.ErrorIs(t, err, ErrKeyLoad)
		_, err = m.LoadPrivateKey(ctx)
		assert.ErrorIs(t, err, ErrKeyLoad)
	})

	t.Run("malformed", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, "private.pem", []byte("not a key")))
		require.NoError(t, store.Save(ctx, "public.pem", []byte("-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n")))
		m, err := NewManager(store)
		require.NoError(t, err)

		_, err = m.LoadPrivateKey(ctx)
		assert.ErrorIs(t, err, ErrKeyLoad)
		_, err = m.LoadPublicKey(ctx)
		assert.ErrorIs(t, err, ErrKeyLoad)
	})

	t.Run("undersized", func(t *testing.T) {
		small, err := rsa.GenerateKey(rand.Reader, 1024)
		require.NoError(t, err)
		pub, err := EncodePublicKey(&small.PublicKey)
		require.NoError(t, err)

		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, "private.pem", EncodePrivateKey(small)))
		require.NoError(t, store.Save(ctx, "public.pem", pub))
		m, err := NewManager(store)
		require.NoError(t, err)

		_, err = m.LoadPrivateKey(ctx)
		assert.ErrorIs(t, err, ErrKeyLoad)
		_, err = m.LoadPublicKey(ctx)
		assert.ErrorIs(t, err, ErrKeyLoad)
	})

	t.Run("pkcs8", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		der, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)

		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, "private.pem", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})))
		m, err := NewManager(store)
		require.NoError(t, err)

		priv, err := m.LoadPrivateKey(ctx)
		require.NoError(t, err)
		assert.True(t, key.Equal(priv))
	})
}

func TestLoadKeysCached(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m, err := NewManager(store, WithCache(true))
	require.NoError(t, err)
	require.NoError(t, m.EnsureKeyPairExists(ctx))

	a, err := m.LoadPrivateKey(ctx)
	require.NoError(t, err)
	b, err := m.LoadPrivateKey(ctx)
	require.NoError(t, err)
	assert.Same(t, a, b)

	p, err := m.LoadPublicKey(ctx)
	require.NoError(t, err)
	q, err := m.LoadPublicKey(ctx)
	require.NoError(t, err)
	assert.Same(t, p, q)
}

func TestNewManagerOptions(t *testing.T) {
	store := NewMemoryStore()

	m, err := NewManager(store)
	require.NoError(t, err)
	assert.Equal(t, KeyOption{PrivateKeyName: "private.pem", PublicKeyName: "public.pem", Bits: 2048}, m.Option())

	_, err = NewManager(store, WithBits(1024))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = NewManager(store, WithPrivateKeyName("same.pem"), WithPublicKeyName("same.pem"))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = NewManager(nil)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestFileStoreRejectsPathNames(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"../escape.pem", "a/b.pem", ""} {
		assert.Error(t, store.Save(ctx, name, []byte("x")), name)
		_, err := store.Exists(ctx, name)
		assert.Error(t, err, name)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, err := store.Load(context.Background(), "absent.pem")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

// createOnlyStore refuses to overwrite, like the etcd store.
type createOnlyStore struct {
	*MemoryStore
}

func (s createOnlyStore) Save(ctx context.Context, name string, data []byte) error {
	if ok, _ := s.Exists(ctx, name); ok {
		return ErrKeyExists
	}
	return s.MemoryStore.Save(ctx, name, data)
}

func TestEnsureKeyPairExistsCreateOnlyStore(t *testing.T) {
	ctx := context.Background()
	store := createOnlyStore{NewMemoryStore()}
	m, err := NewManager(store)
	require.NoError(t, err)

	require.NoError(t, m.EnsureKeyPairExists(ctx))
	require.NoError(t, m.EnsureKeyPairExists(ctx))

	// A stale public key without its private half cannot be reconciled.
	delete(store.items, "private.pem")
	err = m.EnsureKeyPairExists(ctx)
	assert.ErrorIs(t, err, ErrKeyStore)
}
