// Package storage keeps uploaded images on local disk under a media root.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type Storage interface {
	// Save writes r under dir and returns the stored path relative to the media root.
	Save(ctx context.Context, dir, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, relPath string) error
	URL(relPath string) string
}

type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL}
}

func (s *LocalStorage) Root() string { return s.root }

func (s *LocalStorage) Save(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	base := slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if base == "" {
		base = "upload"
	}
	rel := path.Join(dir, base+"-"+uuid.NewString()[:8]+ext)

	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close media file: %w", err)
	}
	return rel, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *LocalStorage) Delete(ctx context.Context, relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(relPath string) string {
	return s.baseURL + strings.TrimPrefix(relPath, "/")
}

// resolve maps a relative media path to disk, refusing paths that escape the root.
func (s *LocalStorage) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", fmt.Errorf("invalid media path %q", rel)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
