package envelope

const (
	// KeySize is the AES-256 content key length in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
	// WrapPayloadSize is the length of key||nonce before RSA wrapping.
	WrapPayloadSize = KeySize + NonceSize
)
