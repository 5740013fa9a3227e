package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSStore is a BlobStore rooted at a base directory.
type FSStore struct {
	base string
}

func NewFSStore(base string) (*FSStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	return &FSStore{base: abs}, nil
}

var errBadKey = errors.New("storage: key escapes base directory")

func (s *FSStore) path(key string) (string, error) {
	p := filepath.Join(s.base, filepath.FromSlash(key))
	if !strings.HasPrefix(p, s.base+string(os.PathSeparator)) {
		return "", errBadKey
	}
	return p, nil
}

func (s *FSStore) Put(key string, r io.Reader) (int64, error) {
	p, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(p)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (s *FSStore) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (s *FSStore) Abs(key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	return p, nil
}
