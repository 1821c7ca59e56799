package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/studio-portfolio-backend/config"
	"github.com/rpupo63/studio-portfolio-backend/errs"
)

type fakeS3 struct {
	objects map[string]string
	types   map[string]string
	err     error
	calls   int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = string(body)
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func testConfig() S3Config {
	return S3Config{Bucket: "studio", Region: "us-east-1", PublicURL: "https://cdn.example.com/studio/"}
}

func TestS3Storage_UploadAndDelete(t *testing.T) {
	fake := newFakeS3()
	store := NewS3StorageWithClient(fake, testConfig(), zerolog.Nop())
	ctx := context.Background()

	url, err := store.Upload(ctx, "projects/my-house/cover-a.jpg", "image/jpeg", strings.NewReader("jpeg"), 4)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/studio/projects/my-house/cover-a.jpg", url)
	assert.Equal(t, "jpeg", fake.objects["projects/my-house/cover-a.jpg"])
	assert.Equal(t, "image/jpeg", fake.types["projects/my-house/cover-a.jpg"])

	key, ok := store.KeyFromURL(url)
	require.True(t, ok)
	require.NoError(t, store.Delete(ctx, key))
	assert.Empty(t, fake.objects)
}

func TestS3Storage_FailuresBecomeStorageErrors(t *testing.T) {
	fake := newFakeS3()
	fake.err = errors.New("boom")
	store := NewS3StorageWithClient(fake, testConfig(), zerolog.Nop())

	_, err := store.Upload(context.Background(), "k", "image/png", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.True(t, errs.IsStorageError(err))
	assert.ErrorIs(t, err, errs.ErrStorageUpload)

	err = store.Delete(context.Background(), "k")
	assert.ErrorIs(t, err, errs.ErrStorageDelete)
}

func TestS3Storage_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	fake := newFakeS3()
	fake.err = errors.New("unreachable")
	store := NewS3StorageWithClient(fake, testConfig(), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_ = store.Delete(ctx, "k")
	}
	callsBefore := fake.calls

	err := store.Delete(ctx, "k")
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
	assert.Equal(t, callsBefore, fake.calls, "open breaker must not reach the backend")
}

func TestKeyFromPublicURL(t *testing.T) {
	key, ok := KeyFromPublicURL("https://cdn.example.com/b", "https://cdn.example.com/b/projects/x/y.png")
	assert.True(t, ok)
	assert.Equal(t, "projects/x/y.png", key)

	_, ok = KeyFromPublicURL("https://cdn.example.com/b", "https://elsewhere.com/projects/x/y.png")
	assert.False(t, ok)

	_, ok = KeyFromPublicURL("", "https://cdn.example.com/b/x")
	assert.False(t, ok)
}

func TestProjectKey(t *testing.T) {
	key := ProjectKey("my-house", "gallery", "Living Room (1).JPG", "jpeg")
	assert.True(t, strings.HasPrefix(key, "projects/my-house/gallery-living-room-1-"), key)
	assert.True(t, strings.HasSuffix(key, ".jpeg"), key)

	other := ProjectKey("my-house", "gallery", "Living Room (1).JPG", "jpeg")
	assert.NotEqual(t, key, other)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "hello-world", SanitizeName("  Hello,  World!! "))
	assert.Equal(t, "image", SanitizeName("***"))
}

func TestS3ConfigFromEnv(t *testing.T) {
	cfg := S3ConfigFromEnv(config.Config{"STORAGE_BUCKET": "studio", "STORAGE_REGION": "eu-west-1"})
	assert.Equal(t, "https://studio.s3.eu-west-1.amazonaws.com", cfg.PublicURL)

	cfg = S3ConfigFromEnv(config.Config{"STORAGE_BUCKET": "studio", "STORAGE_PUBLIC_URL": "https://cdn.example.com"})
	assert.Equal(t, "https://cdn.example.com", cfg.PublicURL)
}
