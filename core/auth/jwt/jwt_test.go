package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(t *testing.T, opts ...Option) *JWT {
	t.Helper()
	j, err := New(&Config{Secret: "test-secret"}, opts...)
	require.NoError(t, err)
	return j
}

func TestGenerateParse(t *testing.T) {
	j := newTestJWT(t, WithIssuer("docvault"))

	token, err := j.Generate("alice", "user")
	require.NoError(t, err)

	claims, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Owner())
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "docvault", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestDefaults(t *testing.T) {
	j := newTestJWT(t)
	assert.Equal(t, "HS256", j.config.SigningMethod)
	assert.Equal(t, time.Hour, j.config.AccessTokenTTL)
	assert.Equal(t, 30*time.Second, j.config.Leeway)
}

func TestEmptySecret(t *testing.T) {
	_, err := New(&Config{})
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestGenerateRequiresID(t *testing.T) {
	j := newTestJWT(t)
	_, err := j.Generate("", "user")
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

// signRaw 直接签发任意 claims，模拟外部系统签发的 token
func signRaw(t *testing.T, method jwt.SigningMethod, secret any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestParseSubjectFallback(t *testing.T) {
	j := newTestJWT(t)
	token := signRaw(t, jwt.SigningMethodHS256, []byte("test-secret"), jwt.MapClaims{
		"sub": "bob",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Owner())
	assert.Empty(t, claims.Role)
}

func TestParseRejects(t *testing.T) {
	j := newTestJWT(t)
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
		err   error
	}{
		{
			name:  "wrong secret",
			token: signRaw(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"id": "alice", "exp": future}),
			err:   ErrInvalidSignature,
		},
		{
			name:  "expired",
			token: signRaw(t, jwt.SigningMethodHS256, []byte("test-secret"), jwt.MapClaims{"id": "alice", "exp": time.Now().Add(-time.Hour).Unix()}),
			err:   ErrExpiredToken,
		},
		{
			name:  "missing exp",
			token: signRaw(t, jwt.SigningMethodHS256, []byte("test-secret"), jwt.MapClaims{"id": "alice"}),
			err:   ErrInvalidToken,
		},
		{
			name:  "other algorithm",
			token: signRaw(t, jwt.SigningMethodHS512, []byte("test-secret"), jwt.MapClaims{"id": "alice", "exp": future}),
			err:   ErrInvalidSignature,
		},
		{
			name:  "none algorithm",
			token: signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"id": "alice", "exp": future}),
			err:   ErrInvalidSignature,
		},
		{
			name:  "no identity",
			token: signRaw(t, jwt.SigningMethodHS256, []byte("test-secret"), jwt.MapClaims{"role": "user", "exp": future}),
			err:   ErrInvalidClaims,
		},
		{
			name:  "malformed",
			token: "not-a-token",
			err:   ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Parse(tt.token)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	j := newTestJWT(t, WithAudience("docvault-api"), WithAccessTokenTTL(5*time.Minute))

	token, err := j.Generate("alice", "")
	require.NoError(t, err)

	claims, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, jwt.ClaimStrings{"docvault-api"}, claims.Audience)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestParseAudience(t *testing.T) {
	verifier := newTestJWT(t, WithAudience("docvault", "docvault-admin"))

	other := newTestJWT(t, WithAudience("other-service"))
	token, err := other.Generate("user-1", "user")
	require.NoError(t, err)
	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := newTestJWT(t)
	token, err = none.Generate("user-1", "user")
	require.NoError(t, err)
	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken, "aud is required once configured")

	admin := newTestJWT(t, WithAudience("docvault-admin"))
	token, err = admin.Generate("user-1", "user")
	require.NoError(t, err)
	claims, err := verifier.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Owner())

	// 未配置受众时不检查 aud
	_, err = none.Parse(token)
	assert.NoError(t, err)
}
