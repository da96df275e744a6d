package redact

import (
	"io"
	"sync"

	"github.com/kochabx/docvault/log/internal"
)

// Hook 持有一组按添加顺序执行的脱敏规则
type Hook struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewHook 创建脱敏钩子
func NewHook(rules ...Rule) *Hook {
	h := &Hook{}
	h.Add(rules...)
	return h
}

// Add 添加规则，同名规则会被替换
func (h *Hook) Add(rules ...Rule) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, rule := range rules {
		if rule == nil {
			continue
		}
		replaced := false
		for i, r := range h.rules {
			if r.Name() == rule.Name() {
				h.rules[i] = rule
				replaced = true
				break
			}
		}
		if !replaced {
			h.rules = append(h.rules, rule)
		}
	}
}

// Remove 移除规则
func (h *Hook) Remove(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, r := range h.rules {
		if r.Name() == name {
			h.rules = append(h.rules[:i], h.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Names 返回规则名称
func (h *Hook) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.rules))
	for _, r := range h.rules {
		names = append(names, r.Name())
	}
	return names
}

// Redact 对文本应用所有规则
func (h *Hook) Redact(s string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, r := range h.rules {
		s = r.Apply(s)
	}
	return s
}

// Writer 在写入下游之前对日志内容脱敏
type Writer struct {
	w    io.Writer
	hook *Hook
}

// NewWriter 创建脱敏 writer
func NewWriter(w io.Writer, hook *Hook) *Writer {
	return &Writer{w: w, hook: hook}
}

// Write 返回原始输入长度，使 zerolog 不会把脱敏导致的长度变化当作短写
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	text := string(p)
	out := w.hook.Redact(text)
	if out == text {
		return w.w.Write(p)
	}

	buf := internal.GetBuffer()
	defer internal.PutBuffer(buf)

	buf.WriteString(out)
	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
