package redact

import (
	"fmt"
	"regexp"
)

// Rule 脱敏规则
type Rule interface {
	// Name 规则名称
	Name() string
	// Apply 对文本进行脱敏
	Apply(s string) string
}

// ContentRule 按内容正则替换的规则
type ContentRule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule 创建内容规则
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" {
		return nil, fmt.Errorf("redact: rule name cannot be empty")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("redact: invalid pattern %q: %w", pattern, err)
	}
	return &ContentRule{name: name, pattern: re, replacement: replacement}, nil
}

// MustContentRule 创建内容规则，失败时 panic
func MustContentRule(name, pattern, replacement string) *ContentRule {
	r, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *ContentRule) Name() string { return r.name }

func (r *ContentRule) Apply(s string) string {
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 将 JSON 日志中指定字段的字符串值整体替换
type FieldRule struct {
	name        string
	field       string
	pattern     *regexp.Regexp
	replacement string
}

// NewFieldRule 创建字段规则
func NewFieldRule(name, field, replacement string) (*FieldRule, error) {
	if name == "" || field == "" {
		return nil, fmt.Errorf("redact: rule name and field cannot be empty")
	}
	re, err := regexp.Compile(fmt.Sprintf(`"%s"\s*:\s*"(?:[^"\\]|\\.)*"`, regexp.QuoteMeta(field)))
	if err != nil {
		return nil, fmt.Errorf("redact: invalid field %q: %w", field, err)
	}
	return &FieldRule{name: name, field: field, pattern: re, replacement: replacement}, nil
}

// MustFieldRule 创建字段规则，失败时 panic
func MustFieldRule(name, field, replacement string) *FieldRule {
	r, err := NewFieldRule(name, field, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *FieldRule) Name() string { return r.name }

func (r *FieldRule) Apply(s string) string {
	return r.pattern.ReplaceAllLiteralString(s, fmt.Sprintf(`"%s":"%s"`, r.field, r.replacement))
}
