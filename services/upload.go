package services

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/studio-portfolio-backend/errs"
	"github.com/rpupo63/studio-portfolio-backend/storage"
)

const DefaultMaxAssetBytes int64 = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// AllowedImageTypes lists the accepted upload content types.
func AllowedImageTypes() []string {
	types := make([]string, 0, len(imageExtensions))
	for t := range imageExtensions {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Asset is one uploaded file as received from a form.
type Asset struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func (s *ProjectService) validateAsset(a Asset) error {
	if _, ok := imageExtensions[mediaType(a.ContentType)]; !ok {
		return errs.NewUnsupportedMediaTypeError(a.Field, a.ContentType, AllowedImageTypes())
	}
	if a.Size > s.maxAssetBytes {
		return errs.NewMaxBodySizeExceededError(a.Field, s.maxAssetBytes)
	}
	if a.Open == nil {
		return errs.NewMissingRequiredFieldError(a.Field)
	}
	return nil
}

func (s *ProjectService) validateAssets(cover *Asset, gallery []Asset) error {
	if cover != nil {
		if err := s.validateAsset(*cover); err != nil {
			return err
		}
	}
	for _, a := range gallery {
		if err := s.validateAsset(a); err != nil {
			return err
		}
	}
	return nil
}

// uploadBatch tracks the keys written during one request so they can be
// removed if a later step fails.
type uploadBatch struct {
	mu   sync.Mutex
	keys []string
}

func (b *uploadBatch) add(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, key)
}

func (b *uploadBatch) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.keys)
}

func (s *ProjectService) uploadOne(ctx context.Context, batch *uploadBatch, slug, prefix string, a Asset) (string, error) {
	body, err := a.Open()
	if err != nil {
		return "", errs.NewInternalErrorWithCause(fmt.Sprintf("failed to read %s", a.Field), err)
	}
	defer body.Close()

	key := storage.ProjectKey(slug, prefix, a.Filename, imageExtensions[mediaType(a.ContentType)])
	url, err := s.storage.Upload(ctx, key, mediaType(a.ContentType), body, a.Size)
	if err != nil {
		return "", err
	}
	batch.add(key)
	return url, nil
}

// uploadGallery uploads assets with bounded parallelism. The returned URLs
// follow the order of assets.
func (s *ProjectService) uploadGallery(ctx context.Context, batch *uploadBatch, slug string, assets []Asset) ([]string, error) {
	urls := make([]string, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.uploadConcurrency)
	for i, a := range assets {
		g.Go(func() error {
			url, err := s.uploadOne(gctx, batch, slug, "gallery", a)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// rollback removes objects written by a request that did not complete.
func (s *ProjectService) rollback(ctx context.Context, batch *uploadBatch) {
	keys := batch.Keys()
	if len(keys) == 0 {
		return
	}
	s.logger.Warn().Int("objects", len(keys)).Msg("removing uploads of failed request")
	s.deleteKeys(ctx, keys)
}

// deleteURLs removes the objects behind urls. Failures are logged and skipped.
func (s *ProjectService) deleteURLs(ctx context.Context, urls []string) {
	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		key, ok := s.storage.KeyFromURL(u)
		if !ok {
			s.logger.Warn().Str("url", u).Msg("url is not in the configured bucket, skipping delete")
			continue
		}
		keys = append(keys, key)
	}
	s.deleteKeys(ctx, keys)
}

func (s *ProjectService) deleteKeys(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.uploadConcurrency)
	for _, key := range keys {
		g.Go(func() error {
			if err := s.storage.Delete(ctx, key); err != nil {
				s.logger.Error().Err(err).Str("key", key).Msg("failed to delete stored object")
			}
			return nil
		})
	}
	_ = g.Wait()
}
