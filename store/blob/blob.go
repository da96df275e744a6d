package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kochabx/docvault/core/tag"
	"github.com/kochabx/docvault/core/validator"
	"github.com/kochabx/docvault/document"
)

// Config 本地目录存储配置
type Config struct {
	Dir string `json:"dir" mapstructure:"dir" default:"uploads"`
}

// Store 将密文保存在本地目录中
type Store struct {
	dir string
}

var _ document.BlobStore = (*Store)(nil)

// New 创建本地存储，目录不存在时以 0700 权限创建
func New(c Config) (*Store, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}
	return &Store{dir: c.Dir}, nil
}

// path 校验对象名，拒绝任何包含路径分隔符的名称
func (s *Store) path(name string) (string, error) {
	if err := validator.Validate.Var(name, "basename"); err != nil {
		return "", document.ErrInvalidInput.WithCause(fmt.Errorf("invalid blob name %q: %w", name, err))
	}
	return filepath.Join(s.dir, name), nil
}

// Put 写入对象，先写临时文件再重命名
func (s *Store) Put(_ context.Context, name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Get 读取对象
func (s *Store) Get(_ context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, document.ErrBlobNotFound.WithCause(err)
	}
	return data, err
}

// Delete 删除对象，对象不存在时返回 ErrBlobNotFound
func (s *Store) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if os.IsNotExist(err) {
		return document.ErrBlobNotFound.WithCause(err)
	}
	return err
}
