package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FSStore keeps documents in a local directory.
type FSStore struct {
	base string
	now  func() time.Time
}

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base, now: time.Now}, nil
}

// Put writes r under a timestamp-prefixed name and returns that name.
func (s *FSStore) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	name = cleanName(name)
	if name == "" {
		return "", errors.New("empty name")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := s.now().Format("20060102150405.000") + "_" + name
	dst := filepath.Join(s.base, key)
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return key, nil
}

// Open returns a stored document by the key Put returned.
func (s *FSStore) Open(key string) (io.ReadCloser, error) {
	if cleanName(key) != key {
		return nil, errors.New("invalid key")
	}
	return os.Open(filepath.Join(s.base, key))
}

func cleanName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
