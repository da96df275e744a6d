package keypair

// KeyOption contains options for key generation and lookup.
type KeyOption struct {
	PrivateKeyName string `json:"private_key_name" default:"private.pem"`
	PublicKeyName  string `json:"public_key_name" default:"public.pem"`
	Bits           int    `json:"bits" default:"2048"`
	Cache          bool   `json:"cache"`
}

// WithPrivateKeyName sets the artifact name of the private key.
func WithPrivateKeyName(name string) func(*KeyOption) {
	return func(o *KeyOption) {
		o.PrivateKeyName = name
	}
}

// WithPublicKeyName sets the artifact name of the public key.
func WithPublicKeyName(name string) func(*KeyOption) {
	return func(o *KeyOption) {
		o.PublicKeyName = name
	}
}

// WithBits sets the RSA modulus size used when a pair is generated.
func WithBits(bits int) func(*KeyOption) {
	return func(o *KeyOption) {
		o.Bits = bits
	}
}

// WithCache keeps parsed keys in memory after the first load.
func WithCache(cache bool) func(*KeyOption) {
	return func(o *KeyOption) {
		o.Cache = cache
	}
}
