package validator

import (
	"errors"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// ValidationErrors 翻译后的校验错误集合
type ValidationErrors struct {
	fields []FieldError
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve.fields))
	for _, fe := range ve.fields {
		msgs = append(msgs, fe.Message())
	}
	return strings.Join(msgs, "; ")
}

// Fields 返回字段错误列表
func (ve *ValidationErrors) Fields() []FieldError {
	return ve.fields
}

type fieldError struct {
	validator.FieldError
	message     string
	translators map[string]ut.Translator
}

func (fe *fieldError) Message() string {
	return fe.message
}

func (fe *fieldError) Translate(lang string) string {
	if trans, ok := fe.translators[lang]; ok {
		return fe.FieldError.Translate(trans)
	}
	return fe.message
}

// IsValidationError 判断是否为校验错误
func IsValidationError(err error) bool {
	var ve *ValidationErrors
	return errors.As(err, &ve)
}

// FieldMessage 返回指定字段的错误消息
func FieldMessage(err error, field string) string {
	var ve *ValidationErrors
	if !errors.As(err, &ve) {
		return ""
	}
	for _, fe := range ve.fields {
		if fe.Field() == field {
			return fe.Message()
		}
	}
	return ""
}
