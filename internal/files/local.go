package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidKey is returned for keys that escape the storage root
var ErrInvalidKey = errors.New("invalid file key")

// Local stores files on disk and serves them under a URL prefix
type Local struct {
	root    string
	baseURL string
}

// Ensure Local implements FileStore
var _ FileStore = (*Local)(nil)

// NewLocal creates a Local store rooted at dir, publishing files under baseURL
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{
		root:    dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Put writes r to root/key
func (l *Local) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	full, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close file: %w", err)
	}

	return l.baseURL + "/" + path.Clean(key), nil
}

// Remove deletes the file published at url
func (l *Local) Remove(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, l.baseURL+"/")
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidKey, url)
	}
	full, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Handler serves stored files; mount it at the base URL
func (l *Local) Handler() http.Handler {
	return http.StripPrefix(l.baseURL+"/", http.FileServer(http.Dir(l.root)))
}

// BaseURL returns the URL prefix files are published under
func (l *Local) BaseURL() string {
	return l.baseURL
}

func (l *Local) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	return filepath.Join(l.root, filepath.FromSlash(clean)), nil
}
