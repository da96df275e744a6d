package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kochabx/docvault/core/tag"
)

var (
	ErrInvalidToken     = errors.New("jwt: invalid token")
	ErrExpiredToken     = errors.New("jwt: token expired")
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	ErrInvalidClaims    = errors.New("jwt: invalid claims")

	ErrConfigInvalid = errors.New("jwt: invalid configuration")
	ErrEmptySecret   = errors.New("jwt: secret cannot be empty")
)

// JWT 签发和校验所有者身份 token
type JWT struct {
	config *Config
	secret []byte
	parser *jwt.Parser
}

// New 应用默认值和 opts，token 必须带 exp
func New(config *Config, opts ...Option) (*JWT, error) {
	if config == nil {
		return nil, ErrConfigInvalid
	}
	if err := tag.ApplyDefaults(config); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.Secret == "" {
		return nil, ErrEmptySecret
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{config.method().Alg()}),
		jwt.WithLeeway(config.Leeway),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(config.Issuer))
	}
	// 配置多个受众时命中任意一个即可
	if len(config.Audience) > 0 {
		parserOpts = append(parserOpts, jwt.WithAudience(config.Audience...))
	}

	return &JWT{
		config: config,
		secret: []byte(config.Secret),
		parser: jwt.NewParser(parserOpts...),
	}, nil
}

// Generate 为所有者签发 access token
func (j *JWT) Generate(id, role string) (string, error) {
	if id == "" {
		return "", ErrInvalidClaims
	}

	now := time.Now()
	claims := &UserClaims{
		UserID: id,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id,
			Issuer:    j.config.Issuer,
			Audience:  j.config.Audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.AccessTokenTTL)),
		},
	}
	return jwt.NewWithClaims(j.config.method(), claims).SignedString(j.secret)
}

// Parse 校验签名、算法和有效期，返回所有者身份
func (j *JWT) Parse(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	token, err := j.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	})

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case !token.Valid:
		return nil, ErrInvalidToken
	case claims.Owner() == "":
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Authenticate 实现 middleware.Authenticator
func (j *JWT) Authenticate(_ context.Context, tokenString string) (*UserClaims, error) {
	return j.Parse(tokenString)
}
