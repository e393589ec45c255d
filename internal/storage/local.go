package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes objects below baseDir and serves them under urlPrefix.
type LocalStorage struct {
	baseDir   string
	urlPrefix string
}

func NewLocalStorage(baseDir, urlPrefix string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// path resolves key inside baseDir. Keys cannot climb out of it.
func (s *LocalStorage) path(key string) (dest, rel string, err error) {
	clean := filepath.ToSlash(filepath.Clean("/" + key))
	if clean == "/" {
		return "", "", fmt.Errorf("storage: empty key")
	}
	rel = strings.TrimPrefix(clean, "/")
	return filepath.Join(s.baseDir, filepath.FromSlash(rel)), rel, nil
}

func (s *LocalStorage) Save(_ context.Context, key string, data io.Reader, _ string) (string, error) {
	dest, rel, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("storage: create: %w", err)
	}

	_, err = io.Copy(f, data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Never leave a truncated image behind a URL.
		_ = os.Remove(dest)
		return "", fmt.Errorf("storage: write: %w", err)
	}

	return s.urlPrefix + "/" + rel, nil
}
