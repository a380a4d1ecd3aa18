// Package files stores uploaded card and character images.
package files

//go:generate mockgen -destination=mock/mock_store.go -package=filesmock github.com/mcoot/arkham-companion/internal/files FileStore

import (
	"context"
	"io"
	"strings"

	"github.com/mcoot/arkham-companion/internal/model"
)

// DefaultMaxSize is the largest accepted upload (5 MiB)
const DefaultMaxSize int64 = 5 << 20

// FileStore persists uploaded files and publishes them under a URL
type FileStore interface {
	// Put stores r under key and returns the public URL of the stored file
	Put(ctx context.Context, key string, contentType string, r io.Reader) (string, error)
	// Remove deletes the file published at url. A file that is already gone is not an error.
	Remove(ctx context.Context, url string) error
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// ExtensionFor returns the file extension for an allowed image content type
func ExtensionFor(contentType string) (string, bool) {
	ext, ok := extensions[mediaType(contentType)]
	return ext, ok
}

// ValidateImage checks an upload against the allowed image types and size limit
func ValidateImage(upload *model.Upload, maxSize int64) error {
	if upload == nil || upload.Content == nil {
		return model.ErrFileMissing
	}
	if _, ok := ExtensionFor(upload.ContentType); !ok {
		return model.ErrFileWrongType
	}
	if maxSize > 0 && upload.Size > maxSize {
		return model.ErrFileSizeExceeded
	}
	return nil
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
