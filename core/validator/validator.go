package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Validate 全局校验器实例
var Validate = New()

type validatorImpl struct {
	validate    *validator.Validate
	translators map[string]ut.Translator
	lang        string
}

// New 创建校验器，注册 en、zh 翻译以及 basename 校验规则
func New(opts ...Option) Validator {
	v := &validatorImpl{
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		translators: make(map[string]ut.Translator, 2),
		lang:        "en",
	}

	v.validate.RegisterTagNameFunc(jsonTagName)
	_ = v.validate.RegisterValidation("basename", isBasename)

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())
	if trans, ok := uni.GetTranslator("en"); ok {
		_ = en_translations.RegisterDefaultTranslations(v.validate, trans)
		registerBasename(v.validate, trans, "{0} must be a plain file name")
		v.translators["en"] = trans
	}
	if trans, ok := uni.GetTranslator("zh"); ok {
		_ = zh_translations.RegisterDefaultTranslations(v.validate, trans)
		registerBasename(v.validate, trans, "{0}必须是不含路径的文件名")
		v.translators["zh"] = trans
	}

	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *validatorImpl) Struct(s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}
	return v.translate(v.validate.Struct(s))
}

func (v *validatorImpl) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}
	return v.translate(v.validate.StructCtx(ctx, s))
}

func (v *validatorImpl) Var(field any, tag string) error {
	return v.translate(v.validate.Var(field, tag))
}

func (v *validatorImpl) Engine() *validator.Validate {
	return v.validate
}

// translate 将原始校验错误转换为带翻译消息的错误
func (v *validatorImpl) translate(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	trans, ok := v.translators[v.lang]
	if !ok {
		trans = v.translators["en"]
	}

	out := &ValidationErrors{fields: make([]FieldError, 0, len(errs))}
	for _, fe := range errs {
		out.fields = append(out.fields, &fieldError{
			FieldError:  fe,
			message:     fe.Translate(trans),
			translators: v.translators,
		})
	}
	return out
}

// jsonTagName 使用 json 标签作为字段名
func jsonTagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// isBasename 校验值不包含路径分隔符且不是 . 或 ..
func isBasename(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`) && !strings.ContainsRune(s, 0)
}

func registerBasename(v *validator.Validate, trans ut.Translator, text string) {
	_ = v.RegisterTranslation("basename", trans,
		func(ut ut.Translator) error {
			return ut.Add("basename", text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("basename", fe.Field())
			return msg
		},
	)
}
