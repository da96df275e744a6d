package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/docvault/core/auth/jwt"
	"github.com/kochabx/docvault/core/crypto/envelope"
	"github.com/kochabx/docvault/core/crypto/keypair"
	"github.com/kochabx/docvault/document"
	"github.com/kochabx/docvault/metrics"
	middleware "github.com/kochabx/docvault/middleware/http"
	"github.com/kochabx/docvault/store/blob"
	"github.com/kochabx/docvault/store/db"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	handler http.Handler
	db      *db.Client
	auth    *jwt.JWT
	blobDir string
}

func newTestEnv(t *testing.T, cfg document.Config, limiter ...middleware.RateLimiter) *testEnv {
	t.Helper()
	return newTestEnvWith(t, cfg, nil, limiter...)
}

func newTestEnvWith(t *testing.T, cfg document.Config, check HealthCheck, limiter ...middleware.RateLimiter) *testEnv {
	t.Helper()
	ctx := context.Background()

	keys, err := keypair.NewManager(keypair.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, keys.EnsureKeyPairExists(ctx))

	blobDir := filepath.Join(t.TempDir(), "uploads")
	blobs, err := blob.New(blob.Config{Dir: blobDir})
	require.NoError(t, err)

	client, err := db.New(&db.SQLiteConfig{FilePath: filepath.Join(t.TempDir(), "docs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	repo := db.NewDocumentRepository(client.DB())
	require.NoError(t, repo.AutoMigrate(ctx))

	prom := metrics.New()
	recorder, err := metrics.NewDocument(prom.Registry())
	require.NoError(t, err)

	svc, err := document.NewService(envelope.New(keys), blobs, repo,
		document.WithConfig(cfg),
		document.WithRecorder(recorder),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	auth, err := jwt.New(&jwt.Config{Secret: "test-secret"})
	require.NoError(t, err)

	rc := RouterConfig{Documents: svc, Authenticator: auth}
	if len(limiter) > 0 {
		rc.UploadLimiter = limiter[0]
	}
	router := NewRouter(rc)
	server := NewServer(":0", router,
		WithRegistry(prom),
		WithConfig(Config{
			Metrics: MetricsConfig{Enabled: true},
			Health:  HealthConfig{Enabled: true},
		}),
		WithHealthCheck("db", client.Ping),
		WithHealthCheck("extra", check),
	)
	require.Equal(t, ":0", server.Addr())

	return &testEnv{handler: server.Handler(), db: client, auth: auth, blobDir: blobDir}
}

func (e *testEnv) token(t *testing.T, owner string) string {
	t.Helper()
	token, err := e.auth.Generate(owner, "user")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, req *http.Request, owner string) *httptest.ResponseRecorder {
	t.Helper()
	if owner != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, owner))
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type envelopeBody struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func (e *testEnv) upload(t *testing.T, owner, filename string, data []byte) string {
	t.Helper()
	w := e.do(t, uploadRequest(t, filename, "application/pdf", data, nil), owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res uploadResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.Equal(t, filename, res.OriginalFilename)
	return res.ID
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, document.Config{})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHealthReportsFailedDependency(t *testing.T) {
	env := newTestEnvWith(t, document.Config{}, func(context.Context) error {
		return fmt.Errorf("dial tcp 10.0.0.7:6379: connection refused")
	})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","failed":["extra"]}`, w.Body.String())

	require.NoError(t, env.db.Close())
	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
	assert.JSONEq(t, `{"status":"unavailable","failed":["db","extra"]}`, w.Body.String())
}

func TestDocumentsRequireToken(t *testing.T) {
	env := newTestEnv(t, document.Config{})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = env.do(t, req, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadListDownload(t *testing.T) {
	env := newTestEnv(t, document.Config{})
	data := bytes.Repeat([]byte{0x41}, 1000)

	id := env.upload(t, "alice", "report.pdf", data)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents", nil), "alice")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "wrappedKey")
	assert.NotContains(t, w.Body.String(), "authTag")

	var items []listItem
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, "report.pdf", items[0].OriginalFilename)
	assert.Equal(t, "application/pdf", items[0].MimeType)
	assert.Equal(t, int64(1000), items[0].Size)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/download", nil), "alice")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, data, w.Body.Bytes())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=report.pdf`, w.Header().Get("Content-Disposition"))

	// 其他用户无法区分不存在和无权访问
	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/download", nil), "bob")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "document not found", decode(t, w).Msg)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/missing/download", nil), "alice")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadExpiryDate(t *testing.T) {
	env := newTestEnv(t, document.Config{})

	req := uploadRequest(t, "a.txt", "text/plain", []byte("hi"), map[string]string{"expiryDate": "2030-01-02"})
	w := env.do(t, req, "alice")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents", nil), "alice")
	var items []listItem
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &items))
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ExpiryDate)
	assert.Equal(t, "2030-01-02", items[0].ExpiryDate.Format("2006-01-02"))

	req = uploadRequest(t, "a.txt", "text/plain", []byte("hi"), map[string]string{"expiryDate": "next tuesday"})
	w = env.do(t, req, "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"field":"expiryDate"}`, string(decode(t, w).Data))
}

func TestUploadRejects(t *testing.T) {
	env := newTestEnv(t, document.Config{MaxSize: 1024})

	w := env.do(t, uploadRequest(t, "a.exe", "application/x-msdownload", []byte("MZ"), nil), "alice")
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "invalid file type", decode(t, w).Msg)

	w = env.do(t, uploadRequest(t, "big.pdf", "application/pdf", make([]byte, 2048), nil), "alice")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"max_size":"1024"}`, string(decode(t, w).Data))

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", bytes.NewReader(nil))
	w = env.do(t, req, "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"field":"file"}`, string(decode(t, w).Data))
}

func TestDownloadTamperedIsUnavailable(t *testing.T) {
	env := newTestEnv(t, document.Config{})
	id := env.upload(t, "alice", "report.pdf", []byte("secret contents"))

	entries, err := os.ReadDir(env.blobDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	path := filepath.Join(env.blobDir, entries[0].Name())
	ct, err := os.ReadFile(path)
	require.NoError(t, err)
	ct[0] ^= 0x01
	require.NoError(t, os.WriteFile(path, ct, 0o600))

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/download", nil), "alice")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"msg":"document unavailable"}`, w.Body.String())

	w = env.do(t, httptest.NewRequest(http.MethodPost, "/api/documents/verify", nil), "alice")
	require.Equal(t, http.StatusOK, w.Code)

	var report document.VerifyReport
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &report))
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 0, report.Verified)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, id, report.Failed[0].ID)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `docvault_envelope_failures_total{kind="integrity"}`)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t, document.Config{})
	id := env.upload(t, "alice", "report.pdf", []byte("x"))

	w := env.do(t, httptest.NewRequest(http.MethodDelete, "/api/documents/"+id, nil), "bob")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/documents/"+id, nil), "alice")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, string(decode(t, w).Data))

	entries, err := os.ReadDir(env.blobDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/download", nil), "alice")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ownerLimiter 每个 key 只放行一次上传
type ownerLimiter map[string]int

func (l ownerLimiter) Allow(_ context.Context, key string) (bool, error) {
	l[key]++
	return l[key] <= 1, nil
}

func TestUploadRateLimitedPerOwner(t *testing.T) {
	limiter := ownerLimiter{}
	env := newTestEnv(t, document.Config{}, limiter)

	w := env.do(t, uploadRequest(t, "a.txt", "text/plain", []byte("a"), nil), "alice")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, uploadRequest(t, "b.txt", "text/plain", []byte("b"), nil), "alice")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = env.do(t, uploadRequest(t, "c.txt", "text/plain", []byte("c"), nil), "bob")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, limiter["owner:alice"])

	// 列表不受上传限流影响
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	assert.Equal(t, http.StatusOK, env.do(t, req, "alice").Code)
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="my report.pdf"`, contentDisposition("my report.pdf"))
	assert.Equal(t, `attachment; filename*=utf-8''%E6%8A%A5%E5%91%8A.pdf`, contentDisposition("报告.pdf"))
}

func TestParseExpiryDate(t *testing.T) {
	got, err := parseExpiryDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseExpiryDate("2030-01-02T03:04:05+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2030-01-02T01:04:05Z", got.Format("2006-01-02T15:04:05Z07:00"))

	_, err = parseExpiryDate("02/01/2030")
	assert.Error(t, err)
}
