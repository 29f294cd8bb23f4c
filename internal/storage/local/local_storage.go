package local

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gapcheck/internal/port"
)

type localStorage struct {
	root string
}

// NewLocalStorage creates an ObjectStorage that writes exports under dir.
func NewLocalStorage(dir string) (port.ObjectStorage, error) {
	if dir == "" {
		dir = "."
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving export dir: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	return &localStorage{root: root}, nil
}

// resolve maps an object key to a path inside root, rejecting keys that escape it.
func (s *localStorage) resolve(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if p != s.root && !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("local storage: key %q escapes export dir", key)
	}
	return p, nil
}

func (s *localStorage) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.resolve(input.Key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("local storage: creating %s: %w", filepath.Dir(p), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, input.Body); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("local storage: writing %s: %w", input.Key, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return nil, fmt.Errorf("local storage: moving %s into place: %w", input.Key, err)
	}

	return &port.UploadOutput{Location: p}, nil
}

func (s *localStorage) Delete(_ context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local storage: deleting %s: %w", key, err)
	}
	return nil
}

// GetPresignedURL returns a file:// URL; local files do not expire.
func (s *localStorage) GetPresignedURL(_ context.Context, key string, _ int64) (string, error) {
	p, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String(), nil
}
