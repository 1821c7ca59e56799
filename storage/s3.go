package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/rpupo63/studio-portfolio-backend/config"
	"github.com/rpupo63/studio-portfolio-backend/errs"
)

// S3API is the part of *s3.Client the store calls.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // S3-compatible endpoint (Supabase, MinIO); empty for AWS
	PublicURL string // base the public object URLs start with
}

// S3ConfigFromEnv reads STORAGE_* keys.
func S3ConfigFromEnv(c config.Config) S3Config {
	cfg := S3Config{
		Bucket:    config.GetString(c, "STORAGE_BUCKET", ""),
		Region:    config.GetString(c, "STORAGE_REGION", "us-east-1"),
		Endpoint:  config.GetString(c, "STORAGE_ENDPOINT", ""),
		PublicURL: config.GetString(c, "STORAGE_PUBLIC_URL", ""),
	}
	if cfg.PublicURL == "" && cfg.Bucket != "" {
		cfg.PublicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return cfg
}

type S3Storage struct {
	client  S3API
	cfg     S3Config
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

// NewS3Storage loads AWS credentials from the default chain and builds the store.
func NewS3Storage(ctx context.Context, cfg S3Config, logger zerolog.Logger) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("STORAGE_BUCKET is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3StorageWithClient(client, cfg, logger), nil
}

// NewS3StorageWithClient wraps an existing client.
func NewS3StorageWithClient(client S3API, cfg S3Config, logger zerolog.Logger) *S3Storage {
	logger = logger.With().Str("component", "s3Storage").Str("bucket", cfg.Bucket).Logger()

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "object-storage",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &S3Storage{client: client, cfg: cfg, breaker: breaker, logger: logger}
}

func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.PutObject(ctx, input)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("upload failed")
		return "", s.translate(err, errs.NewStorageUploadError(key, err))
	}

	s.logger.Debug().Str("key", key).Int64("size", size).Msg("uploaded object")
	return PublicURL(s.cfg.PublicURL, key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(key),
		})
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("delete failed")
		return s.translate(err, errs.NewStorageDeleteError(key, err))
	}

	s.logger.Debug().Str("key", key).Msg("deleted object")
	return nil
}

func (s *S3Storage) KeyFromURL(url string) (string, bool) {
	return KeyFromPublicURL(s.cfg.PublicURL, url)
}

func (s *S3Storage) translate(err error, fallback *errs.ApiErr) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errs.NewStorageUnavailableError(err)
	}
	return fallback
}
