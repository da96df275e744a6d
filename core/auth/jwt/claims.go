package jwt

import "github.com/golang-jwt/jwt/v5"

// UserClaims 文档所有者身份，id 为空时回退到 sub
type UserClaims struct {
	UserID string `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Owner 返回所有者标识
func (c *UserClaims) Owner() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}
