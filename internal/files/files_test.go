package files

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arkham-companion/internal/model"
)

func TestValidateImage(t *testing.T) {
	png := func(size int64) *model.Upload {
		return &model.Upload{ContentType: "image/png", Size: size, Content: strings.NewReader("x")}
	}

	assert.ErrorIs(t, ValidateImage(nil, DefaultMaxSize), model.ErrFileMissing)
	assert.ErrorIs(t, ValidateImage(&model.Upload{ContentType: "image/png"}, DefaultMaxSize), model.ErrFileMissing)
	assert.ErrorIs(t, ValidateImage(&model.Upload{ContentType: "image/gif", Content: strings.NewReader("x")}, DefaultMaxSize), model.ErrFileWrongType)
	assert.ErrorIs(t, ValidateImage(png(DefaultMaxSize+1), DefaultMaxSize), model.ErrFileSizeExceeded)
	assert.NoError(t, ValidateImage(png(DefaultMaxSize), DefaultMaxSize))
}

func TestExtensionFor(t *testing.T) {
	ext, ok := ExtensionFor("image/jpeg")
	assert.True(t, ok)
	assert.Equal(t, ".jpg", ext)

	ext, ok = ExtensionFor("IMAGE/PNG; charset=binary")
	assert.True(t, ok)
	assert.Equal(t, ".png", ext)

	_, ok = ExtensionFor("text/plain")
	assert.False(t, ok)
}

func TestLocalPutServeRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "cards/1-front.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/cards/1-front.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "cards", "1-front.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	require.NoError(t, store.Remove(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "cards", "1-front.png"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Removing twice is fine
	assert.NoError(t, store.Remove(context.Background(), url))
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../evil.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	assert.ErrorIs(t, store.Remove(context.Background(), "/elsewhere/a.png"), ErrInvalidKey)
}

func TestLocalPutDoesNotOverwrite(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "a.png", "image/png", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "a.png", "image/png", strings.NewReader("two"))
	assert.Error(t, err)
}

type fakeObjects struct {
	puts    map[string]string
	deleted []string
	err     error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(in.Body)
	f.puts[*in.Bucket+"/"+*in.Key] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3PutRemove(t *testing.T) {
	api := &fakeObjects{puts: map[string]string{}}
	store := NewS3WithAPI(api, S3Config{Bucket: "arkham", PublicURL: "https://cdn.example.com/arkham/"})

	url, err := store.Put(context.Background(), "characters/3.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/arkham/characters/3.jpg", url)
	assert.Equal(t, "jpeg", api.puts["arkham/characters/3.jpg"])

	require.NoError(t, store.Remove(context.Background(), url))
	assert.Equal(t, []string{"arkham/characters/3.jpg"}, api.deleted)

	assert.ErrorIs(t, store.Remove(context.Background(), "https://other.example.com/x.jpg"), ErrInvalidKey)
}

func TestS3PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	store := NewS3WithAPI(&fakeObjects{err: boom}, S3Config{Bucket: "arkham", PublicURL: "https://cdn"})

	_, err := store.Put(context.Background(), "k.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Remove(context.Background(), "https://cdn/k.png"), boom)
}
