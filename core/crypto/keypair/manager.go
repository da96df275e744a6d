package keypair

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"sync"

	"github.com/kochabx/docvault/core/tag"
)

// Manager owns the service RSA key pair. It creates the pair on first use
// and hands out parsed keys to the envelope codec.
type Manager struct {
	store  KeyStore
	option KeyOption

	mu   sync.Mutex
	pub  *rsa.PublicKey
	priv *rsa.PrivateKey
}

// NewManager returns a Manager persisting keys through store.
func NewManager(store KeyStore, opts ...func(*KeyOption)) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil key store", ErrInvalidOption)
	}

	option := KeyOption{}
	if err := tag.ApplyDefaults(&option); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	for _, opt := range opts {
		opt(&option)
	}

	if option.Bits < MinBits {
		return nil, fmt.Errorf("%w: bits %d below %d", ErrInvalidOption, option.Bits, MinBits)
	}
	if option.PrivateKeyName == "" || option.PublicKeyName == "" || option.PrivateKeyName == option.PublicKeyName {
		return nil, fmt.Errorf("%w: key names must be set and distinct", ErrInvalidOption)
	}

	return &Manager{store: store, option: option}, nil
}

// Option returns a copy of the effective options.
func (m *Manager) Option() KeyOption {
	return m.option
}

// EnsureKeyPairExists makes sure both key artifacts exist.
//
// When both are present nothing is written. When only the private key is
// present the public half is derived from it, so documents sealed for the
// existing pair stay readable. Otherwise a fresh pair is generated and
// both halves are saved, private first.
func (m *Manager) EnsureKeyPairExists(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hasPriv, err := m.store.Exists(ctx, m.option.PrivateKeyName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStore, err)
	}
	hasPub, err := m.store.Exists(ctx, m.option.PublicKeyName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStore, err)
	}

	switch {
	case hasPriv && hasPub:
		return nil
	case hasPriv:
		return m.derivePublic(ctx)
	default:
		return m.generate(ctx)
	}
}

func (m *Manager) derivePublic(ctx context.Context) error {
	data, err := m.store.Load(ctx, m.option.PrivateKeyName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	priv, err := ParsePrivateKey(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	return m.savePublic(ctx, &priv.PublicKey)
}

func (m *Manager) generate(ctx context.Context) error {
	priv, err := rsa.GenerateKey(rand.Reader, m.option.Bits)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyGenerate, err)
	}

	if err := m.store.Save(ctx, m.option.PrivateKeyName, EncodePrivateKey(priv)); err != nil {
		// Another process won the race; keep its pair.
		if errors.Is(err, ErrKeyExists) {
			return m.derivePublicIfMissing(ctx)
		}
		return fmt.Errorf("%w: %v", ErrKeyStore, err)
	}
	m.priv, m.pub = nil, nil
	return m.savePublic(ctx, &priv.PublicKey)
}

func (m *Manager) derivePublicIfMissing(ctx context.Context) error {
	ok, err := m.store.Exists(ctx, m.option.PublicKeyName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyStore, err)
	}
	if ok {
		return nil
	}
	return m.derivePublic(ctx)
}

func (m *Manager) savePublic(ctx context.Context, pub *rsa.PublicKey) error {
	data, err := EncodePublicKey(pub)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyGenerate, err)
	}
	err = m.store.Save(ctx, m.option.PublicKeyName, data)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, ErrKeyExists):
		return fmt.Errorf("%w: %v", ErrKeyStore, err)
	}

	// A create-only store kept an existing public key; it must match.
	stored, err := m.store.Load(ctx, m.option.PublicKeyName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	existing, err := ParsePublicKey(stored)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	if !existing.Equal(pub) {
		return fmt.Errorf("%w: stored public key does not match private key", ErrKeyStore)
	}
	return nil
}

// LoadPublicKey reads and parses the public key.
func (m *Manager) LoadPublicKey(ctx context.Context) (*rsa.PublicKey, error) {
	if m.option.Cache {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.pub != nil {
			return m.pub, nil
		}
	}

	data, err := m.store.Load(ctx, m.option.PublicKeyName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	pub, err := ParsePublicKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrKeyLoad, m.option.PublicKeyName, err)
	}

	if m.option.Cache {
		m.pub = pub
	}
	return pub, nil
}

// LoadPrivateKey reads and parses the private key.
func (m *Manager) LoadPrivateKey(ctx context.Context) (*rsa.PrivateKey, error) {
	if m.option.Cache {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.priv != nil {
			return m.priv, nil
		}
	}

	data, err := m.store.Load(ctx, m.option.PrivateKeyName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	priv, err := ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrKeyLoad, m.option.PrivateKeyName, err)
	}
	priv.Precompute()

	if m.option.Cache {
		m.priv = priv
	}
	return priv, nil
}
