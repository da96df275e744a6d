package envelope

import (
	"errors"

	"github.com/kochabx/docvault/core/crypto/keypair"
)

var (
	// ErrDecryptionFailed is the coarse error every decryption failure
	// matches. Handlers facing untrusted callers should report only this.
	ErrDecryptionFailed = errors.New("envelope: decryption failed")
	// ErrEncryptionFailed is returned when sealing fails for reasons other
	// than key loading or input size.
	ErrEncryptionFailed = errors.New("envelope: encryption failed")
	// ErrUnwrap is returned when the wrapped key cannot be recovered.
	ErrUnwrap = errors.New("envelope: key unwrap failed")
	// ErrIntegrity is returned when the ciphertext or tag fails authentication.
	ErrIntegrity = errors.New("envelope: integrity check failed")
	// ErrPlaintextTooLarge is returned when the plaintext exceeds the codec limit.
	ErrPlaintextTooLarge = errors.New("envelope: plaintext too large")
	// ErrKeyLoad is returned when the key manager cannot provide a key.
	ErrKeyLoad = keypair.ErrKeyLoad
)

// Kind classifies an error returned by the codec for logs and metrics.
// It returns "key_load", "unwrap", "integrity", "too_large", "encrypt" or
// "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrKeyLoad):
		return "key_load"
	case errors.Is(err, ErrUnwrap):
		return "unwrap"
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	case errors.Is(err, ErrPlaintextTooLarge):
		return "too_large"
	case errors.Is(err, ErrEncryptionFailed):
		return "encrypt"
	default:
		return "unknown"
	}
}
