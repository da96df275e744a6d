package s3

import (
	"context"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/docvault/document"
)

// fakeS3 按路径风格处理 PUT/GET/DELETE/HEAD 请求
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[key] = data
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := New(context.Background(), Config{
		Bucket:          "vault",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Endpoint:        srv.URL,
		UsePathStyle:    true,
		Prefix:          "docs",
	}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return s, fake
}

func TestStore(t *testing.T) {
	t.Setenv("AWS_CA_BUNDLE", "")
	s, fake := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Put(ctx, "a.bin", []byte("ciphertext")))
	assert.Equal(t, []byte("ciphertext"), fake.objects["vault/docs/a.bin"])

	got, err := s.Get(ctx, "a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), got)

	require.NoError(t, s.Delete(ctx, "a.bin"))
	_, err = s.Get(ctx, "a.bin")
	assert.ErrorIs(t, err, document.ErrBlobNotFound)
}

func TestStoreWithCABundle(t *testing.T) {
	tlsSrv := httptest.NewTLSServer(http.NotFoundHandler())
	defer tlsSrv.Close()

	bundle := filepath.Join(t.TempDir(), "ca.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: tlsSrv.Certificate().Raw})
	require.NoError(t, os.WriteFile(bundle, data, 0o600))
	t.Setenv("AWS_CA_BUNDLE", bundle)

	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "a.bin", []byte("ciphertext")))
	got, err := s.Get(ctx, "a.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertext"), got)
}

func TestConfigValidate(t *testing.T) {
	_, err := New(context.Background(), Config{AccessKeyID: "only-id"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Bucket: "vault", RequestTimeout: -1})
	assert.Error(t, err)
}
