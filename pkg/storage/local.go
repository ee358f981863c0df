package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes objects below a directory served at /uploads
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage creates the root directory when missing
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalStorage{root: root, baseURL: baseURL}, nil
}

// Root returns the directory objects are written to
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) resolve(key string) (string, error) {
	key = strings.TrimLeft(filepath.ToSlash(key), "/")
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Save writes body to key and returns the slash separated key
func (s *LocalStorage) Save(ctx context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("local storage mkdir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("local storage create: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("local storage write: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("local storage close: %w", err)
	}
	return filepath.ToSlash(strings.TrimLeft(key, "/")), nil
}

// Delete removes the object; a missing object is not an error
func (s *LocalStorage) Delete(_ context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("local storage delete: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(path string) string {
	return joinURL(s.baseURL, path)
}
