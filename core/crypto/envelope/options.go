package envelope

import (
	"crypto"
	"io"
)

type options struct {
	maxPlaintextSize int
	oaepHash         crypto.Hash
	legacyHashes     []crypto.Hash
	random           io.Reader
}

// Option configures a Codec.
type Option func(*options)

// WithMaxPlaintextSize sets the largest plaintext Encrypt accepts. Zero or
// less means unlimited.
func WithMaxPlaintextSize(n int) Option {
	return func(o *options) {
		o.maxPlaintextSize = max(n, 0)
	}
}

// WithOAEPHash sets the hash used for RSA-OAEP wrapping. SHA-256 is the
// default.
func WithOAEPHash(h crypto.Hash) Option {
	return func(o *options) {
		if h.Available() {
			o.oaepHash = h
		}
	}
}

// WithLegacyOAEPHashes adds hashes that Decrypt tries, in order, when the
// wrapped key does not unwrap with the primary hash. Encrypt never uses them,
// so envelopes written by older deployments stay readable while new ones use
// the primary hash.
func WithLegacyOAEPHashes(hashes ...crypto.Hash) Option {
	return func(o *options) {
		for _, h := range hashes {
			if h.Available() {
				o.legacyHashes = append(o.legacyHashes, h)
			}
		}
	}
}

// WithRandom sets the entropy source for keys, nonces and OAEP padding.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		if r != nil {
			o.random = r
		}
	}
}
