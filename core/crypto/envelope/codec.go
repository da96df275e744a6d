package envelope

import (
	"context"
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	_ "crypto/sha1"
	_ "crypto/sha256"
	"errors"
	"fmt"
	"io"
)

// KeyProvider supplies the RSA key pair. *keypair.Manager implements it.
type KeyProvider interface {
	LoadPublicKey(ctx context.Context) (*rsa.PublicKey, error)
	LoadPrivateKey(ctx context.Context) (*rsa.PrivateKey, error)
}

// Payload is the output of Encrypt. The three parts travel together; the
// plaintext is recoverable only with all of them and the matching private key.
type Payload struct {
	Ciphertext []byte `json:"ciphertext"`
	AuthTag    []byte `json:"auth_tag"`
	WrappedKey []byte `json:"wrapped_key"`
}

// Codec seals documents with a fresh AES-256-GCM key per call and wraps
// that key with RSA-OAEP. It holds no mutable state and is safe for
// concurrent use.
type Codec struct {
	keys KeyProvider
	opts options
}

// New returns a Codec using keys for wrapping and unwrapping.
func New(keys KeyProvider, opts ...Option) *Codec {
	o := options{
		oaepHash: crypto.SHA256,
		random:   rand.Reader,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Codec{keys: keys, opts: o}
}

// MaxPlaintextSize returns the largest plaintext Encrypt accepts, or zero
// when unlimited.
func (c *Codec) MaxPlaintextSize() int {
	return c.opts.maxPlaintextSize
}

// Encrypt seals plaintext.
// The process is:
// 1. Load the public key
// 2. Draw a random 32-byte key and 12-byte nonce
// 3. Seal with AES-256-GCM and split off the 16-byte tag
// 4. Wrap key||nonce with RSA-OAEP
func (c *Codec) Encrypt(ctx context.Context, plaintext []byte) (*Payload, error) {
	return c.EncryptWithAD(ctx, plaintext, nil)
}

// EncryptWithAD seals plaintext and authenticates ad alongside it. The same
// ad must be supplied to DecryptWithAD.
func (c *Codec) EncryptWithAD(ctx context.Context, plaintext, ad []byte) (*Payload, error) {
	if c.opts.maxPlaintextSize > 0 && len(plaintext) > c.opts.maxPlaintextSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrPlaintextTooLarge, len(plaintext), c.opts.maxPlaintextSize)
	}

	pub, err := c.keys.LoadPublicKey(ctx)
	if err != nil {
		return nil, keyLoadError(err)
	}

	buf := getPayload()
	defer putPayload(buf)

	if _, err := io.ReadFull(c.opts.random, buf[:]); err != nil {
		return nil, fmt.Errorf("%w: failed to read random: %v", ErrEncryptionFailed, err)
	}
	key, nonce := buf[:KeySize], buf[KeySize:]

	gcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	n := len(plaintext)
	sealed := gcm.Seal(make([]byte, 0, n+TagSize), nonce, plaintext, ad)

	wrapped, err := rsa.EncryptOAEP(c.opts.oaepHash.New(), c.opts.random, pub, buf[:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to wrap key: %v", ErrEncryptionFailed, err)
	}

	return &Payload{
		Ciphertext: sealed[:n:n],
		AuthTag:    sealed[n:],
		WrappedKey: wrapped,
	}, nil
}

// Decrypt recovers the plaintext sealed by Encrypt. Every failure matches
// ErrDecryptionFailed and one of ErrKeyLoad, ErrUnwrap or ErrIntegrity.
// No partial plaintext is ever returned.
func (c *Codec) Decrypt(ctx context.Context, ciphertext, authTag, wrappedKey []byte) ([]byte, error) {
	return c.DecryptWithAD(ctx, ciphertext, authTag, wrappedKey, nil)
}

// DecryptWithAD is Decrypt for envelopes sealed by EncryptWithAD.
// The process is:
// 1. Load the private key
// 2. Unwrap key||nonce with RSA-OAEP
// 3. Reattach the tag and open with AES-256-GCM
func (c *Codec) DecryptWithAD(ctx context.Context, ciphertext, authTag, wrappedKey, ad []byte) ([]byte, error) {
	priv, err := c.keys.LoadPrivateKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, keyLoadError(err))
	}

	if len(wrappedKey) != priv.Size() {
		return nil, fmt.Errorf("%w: %w: wrapped key is %d bytes, want %d", ErrDecryptionFailed, ErrUnwrap, len(wrappedKey), priv.Size())
	}
	payload, err := c.unwrap(priv, wrappedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrDecryptionFailed, ErrUnwrap, err)
	}
	defer clear(payload)
	if len(payload) != WrapPayloadSize {
		return nil, fmt.Errorf("%w: %w: unwrapped %d bytes, want %d", ErrDecryptionFailed, ErrUnwrap, len(payload), WrapPayloadSize)
	}

	if len(authTag) != TagSize {
		return nil, fmt.Errorf("%w: %w: tag is %d bytes, want %d", ErrDecryptionFailed, ErrIntegrity, len(authTag), TagSize)
	}

	gcm, err := newGCM(payload[:KeySize])
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrDecryptionFailed, ErrUnwrap, err)
	}

	// Open decrypts in place over ct||tag; the caller's slices stay untouched.
	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)

	plaintext, err := gcm.Open(sealed[:0], payload[KeySize:], sealed, ad)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: authentication failed or corrupted data", ErrDecryptionFailed, ErrIntegrity)
	}
	return plaintext, nil
}

// Open is Decrypt taking a Payload.
func (c *Codec) Open(ctx context.Context, p *Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: %w: nil payload", ErrDecryptionFailed, ErrUnwrap)
	}
	return c.Decrypt(ctx, p.Ciphertext, p.AuthTag, p.WrappedKey)
}

// unwrap tries the primary hash first, then the legacy ones. The error of the
// primary attempt is the one reported.
func (c *Codec) unwrap(priv *rsa.PrivateKey, wrappedKey []byte) ([]byte, error) {
	payload, err := rsa.DecryptOAEP(c.opts.oaepHash.New(), nil, priv, wrappedKey, nil)
	if err == nil {
		return payload, nil
	}
	for _, h := range c.opts.legacyHashes {
		if h == c.opts.oaepHash {
			continue
		}
		if p, lerr := rsa.DecryptOAEP(h.New(), nil, priv, wrappedKey, nil); lerr == nil {
			return p, nil
		}
	}
	return nil, err
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

func keyLoadError(err error) error {
	if errors.Is(err, ErrKeyLoad) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrKeyLoad, err)
}
