package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(404, "document %s not found", "abc")
	assert.Equal(t, 404, err.GetCode())
	assert.Equal(t, "document abc not found", err.GetMessage())
	assert.Equal(t, "code=404, message=document abc not found", err.Error())
}

func TestWithMetadata(t *testing.T) {
	err := New(500, "document unavailable")

	assert.Same(t, err, err.WithMetadata(nil))

	withMeta := err.WithMetadata(map[string]string{"kind": "integrity"})
	assert.NotSame(t, err, withMeta)
	assert.Empty(t, err.Metadata)
	assert.Equal(t, "integrity", withMeta.Metadata["kind"])
	assert.Contains(t, withMeta.Error(), "metadata={kind=integrity}")
}

func TestWithCause(t *testing.T) {
	cause := goerrors.New("blob missing")
	err := Internal("document unavailable").WithCause(cause)

	assert.Same(t, cause, err.GetCause())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cause=blob missing")
}

func TestIs(t *testing.T) {
	sentinel := NotFound("document not found")
	wrapped := fmt.Errorf("lookup: %w", sentinel.WithCause(goerrors.New("no rows")))

	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, NotFound("other"))
	assert.NotErrorIs(t, wrapped, BadRequest("document not found"))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	plain := goerrors.New("boom")
	converted := FromError(plain)
	assert.Equal(t, UnknownCode, converted.GetCode())
	assert.ErrorIs(t, converted, plain)

	existing := Forbidden("not yours")
	assert.Same(t, existing, FromError(existing))
	assert.Same(t, existing, FromError(fmt.Errorf("ctx: %w", existing)))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, 500, "unused"))

	cause := goerrors.New("disk full")
	err := Wrap(cause, 503, "storage %s", "down")
	require.NotNil(t, err)
	assert.Equal(t, "storage down", err.GetMessage())
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{http.StatusNotFound, http.StatusNotFound},
		{http.StatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge},
		{http.StatusUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{10001, http.StatusInternalServerError},
		{200, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.code, "x").HTTPStatus(), "code %d", tt.code)
	}
}

func BenchmarkErrorString(b *testing.B) {
	err := Internal("document unavailable").
		WithMetadata(map[string]string{"kind": "unwrap"}).
		WithCause(goerrors.New("decryption error"))

	b.ReportAllocs()
	for b.Loop() {
		_ = err.Error()
	}
}
