package validator

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// Validator 校验器接口
type Validator interface {
	// Struct 校验结构体
	Struct(s any) error
	// StructCtx 带上下文校验结构体
	StructCtx(ctx context.Context, s any) error
	// Var 校验单个值
	Var(field any, tag string) error
	// Engine 返回底层的 validator 实例
	Engine() *validator.Validate
}

// FieldError 字段错误
type FieldError interface {
	Field() string
	Tag() string
	Value() any
	Message() string
	Translate(lang string) string
}

// Option 校验器选项
type Option func(*validatorImpl)

// WithTagName 设置校验标签名
func WithTagName(name string) Option {
	return func(v *validatorImpl) {
		v.validate.SetTagName(name)
	}
}

// WithLanguage 设置默认翻译语言，支持 en、zh
func WithLanguage(lang string) Option {
	return func(v *validatorImpl) {
		v.lang = lang
	}
}
