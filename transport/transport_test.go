package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAddress(t *testing.T) {
	for _, addr := range []string{":8080", "localhost:8080", "0.0.0.0:443", "[::1]:9000", "docvault.internal:80"} {
		assert.NoError(t, CheckAddress(addr), addr)
	}
	for _, addr := range []string{"", "8080", ":0", ":65536", "localhost:http", "bad_host:80"} {
		assert.Error(t, CheckAddress(addr), addr)
	}
}
