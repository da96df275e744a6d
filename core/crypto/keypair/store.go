package keypair

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kochabx/docvault/core/validator"
)

// KeyStore persists named key artifacts. Implementations exist for the local
// filesystem, memory and etcd; an HSM or secrets manager only needs these
// three methods.
type KeyStore interface {
	// Exists reports whether the named artifact is present.
	Exists(ctx context.Context, name string) (bool, error)
	// Load returns the artifact bytes, or an error wrapping ErrKeyNotFound.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save persists the artifact bytes.
	Save(ctx context.Context, name string, data []byte) error
}

var (
	_ KeyStore = (*FileStore)(nil)
	_ KeyStore = (*MemoryStore)(nil)
)

// FileStore keeps key artifacts as files in one directory. The directory is
// created with mode 0700 on first save and files are written with mode 0600.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(name string) (string, error) {
	if err := validator.Validate.Var(name, "basename"); err != nil {
		return "", fmt.Errorf("invalid key name %q: %w", name, err)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *FileStore) Exists(_ context.Context, name string) (bool, error) {
	p, err := s.path(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

func (s *FileStore) Load(_ context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, p)
	}
	return data, err
}

// Save writes data to a temporary file and renames it into place, so readers
// never observe a partially written key.
func (s *FileStore) Save(_ context.Context, name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// MemoryStore keeps key artifacts in process memory. Useful for tests and
// throwaway deployments where documents never outlive the process.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (s *MemoryStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[name]
	return ok, nil
}

func (s *MemoryStore) Load(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Save(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[name] = append([]byte(nil), data...)
	return nil
}
