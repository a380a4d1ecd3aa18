package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mcoot/arkham-companion/internal/api/apierr"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/validation"
)

// MaxBodySize caps JSON request bodies
const MaxBodySize int64 = 1 << 20

// FileField is the multipart field carrying an upload
const FileField = "file"

// multipartOverhead leaves room for part headers and boundaries around the file
const multipartOverhead int64 = 64 << 10

// Decode reads a JSON body into dst and validates it
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apierr.NewInvalidRequestError("request body is required")
		case errors.As(err, &tooLarge):
			return apierr.NewInvalidRequestError("request body is too large")
		default:
			return apierr.NewInvalidRequestError(fmt.Sprintf("invalid request body: %v", err))
		}
	}
	if dec.More() {
		return apierr.NewInvalidRequestError("request body must contain a single JSON object")
	}

	return validation.Struct(r.Context(), dst)
}

// Upload reads the single file of a multipart request into memory.
// Bodies larger than maxSize are rejected with ErrFileSizeExceeded.
func Upload(w http.ResponseWriter, r *http.Request, maxSize int64) (*model.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, model.ErrFileSizeExceeded
		}
		return nil, model.ErrFileMissing
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(FileField)
	if err != nil {
		return nil, model.ErrFileMissing
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, model.ErrFileSizeExceeded
	}
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return &model.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(content)),
		Content:     bytes.NewReader(content),
	}, nil
}
