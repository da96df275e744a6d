package redact

const mask = "******"

var (
	// PEMRule PEM 编码块（私钥、公钥、证书）
	PEMRule = MustContentRule("pem", `-----BEGIN [A-Z0-9 ]+-----[\s\S]*?-----END [A-Z0-9 ]+-----`, "[REDACTED PEM]")

	// BearerRule Authorization 头中的 bearer token
	BearerRule = MustContentRule("bearer", `(?i)bearer\s+[A-Za-z0-9\-_\.=+/]+`, "Bearer "+mask)

	// WrappedKeyRule 包装后的文档密钥
	WrappedKeyRule = MustFieldRule("wrapped_key", "wrapped_key", mask)

	// AuthTagRule GCM 认证标签
	AuthTagRule = MustFieldRule("auth_tag", "auth_tag", mask)

	// TokenRule token 字段
	TokenRule = MustFieldRule("token", "token", mask)

	// SecretRule secret 字段
	SecretRule = MustFieldRule("secret", "secret", mask)

	// PasswordRule password 字段
	PasswordRule = MustFieldRule("password", "password", mask)
)

// BuiltinRules 返回所有内置规则
func BuiltinRules() []Rule {
	return []Rule{
		PEMRule,
		BearerRule,
		WrappedKeyRule,
		AuthTagRule,
		TokenRule,
		SecretRule,
		PasswordRule,
	}
}
