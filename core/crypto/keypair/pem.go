package keypair

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

const (
	privateKeyBlockType     = "RSA PRIVATE KEY"
	pkcs8PrivateBlockType   = "PRIVATE KEY"
	publicKeyBlockType      = "PUBLIC KEY"
	pkcs1PublicKeyBlockType = "RSA PUBLIC KEY"
)

// MinBits is the smallest RSA modulus accepted for generation or loading.
const MinBits = 2048

// EncodePrivateKey encodes key as a PKCS#1 "RSA PRIVATE KEY" PEM block.
func EncodePrivateKey(key *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  privateKeyBlockType,
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
}

// EncodePublicKey encodes key as a PKIX "PUBLIC KEY" PEM block.
func EncodePublicKey(key *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: publicKeyBlockType, Bytes: der}), nil
}

// ParsePrivateKey parses a PKCS#1 or PKCS#8 PEM encoded RSA private key.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	var key *rsa.PrivateKey
	switch block.Type {
	case privateKeyBlockType:
		k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		key = k
	case pkcs8PrivateBlockType:
		k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rk, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("unexpected private key type %T", k)
		}
		key = rk
	default:
		return nil, fmt.Errorf("unexpected PEM block type %q", block.Type)
	}

	if err := key.Validate(); err != nil {
		return nil, err
	}
	if key.N.BitLen() < MinBits {
		return nil, fmt.Errorf("modulus of %d bits is below %d", key.N.BitLen(), MinBits)
	}
	return key, nil
}

// ParsePublicKey parses a PKIX or PKCS#1 PEM encoded RSA public key.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	var key *rsa.PublicKey
	switch block.Type {
	case publicKeyBlockType:
		k, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rk, ok := k.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("unexpected public key type %T", k)
		}
		key = rk
	case pkcs1PublicKeyBlockType:
		k, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		key = k
	default:
		return nil, fmt.Errorf("unexpected PEM block type %q", block.Type)
	}

	if key.N.BitLen() < MinBits {
		return nil, fmt.Errorf("modulus of %d bits is below %d", key.N.BitLen(), MinBits)
	}
	return key, nil
}
