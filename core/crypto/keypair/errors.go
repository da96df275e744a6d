package keypair

import "errors"

var (
	// ErrKeyLoad is returned when a key artifact cannot be read or parsed.
	ErrKeyLoad = errors.New("keypair: key load failed")
	// ErrKeyGenerate is returned when a new key pair cannot be generated.
	ErrKeyGenerate = errors.New("keypair: key generation failed")
	// ErrKeyStore is returned when a key artifact cannot be persisted.
	ErrKeyStore = errors.New("keypair: key store failed")
	// ErrKeyNotFound is returned by a KeyStore when an artifact does not exist.
	ErrKeyNotFound = errors.New("keypair: key not found")
	// ErrKeyExists is returned by a KeyStore that refuses to overwrite an
	// artifact another writer created first.
	ErrKeyExists = errors.New("keypair: key already exists")
	// ErrInvalidOption is returned for unusable manager options.
	ErrInvalidOption = errors.New("keypair: invalid option")
)
