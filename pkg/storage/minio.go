package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage stores objects in a self hosted MinIO bucket
type MinioStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// MinioConfig holds the MinIO connection parameters
type MinioConfig struct {
	Endpoint        string // host:port, no scheme
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	Region          string
	PublicBaseURL   string
}

// NewMinioStorage connects to MinIO and creates the bucket when it does not exist
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client init: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("minio make bucket %q: %w", cfg.Bucket, err)
		}
		pkglogger.GetLogger().Info().Str("bucket", cfg.Bucket).Msg("MinIO bucket created")
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, endpoint, cfg.Bucket)
	}

	pkglogger.GetLogger().Info().
		Str("bucket", cfg.Bucket).
		Str("endpoint", endpoint).
		Msg("MinIO storage client initialized")

	return &MinioStorage{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (m *MinioStorage) Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if size <= 0 {
		size = -1
	}
	if _, err := m.client.PutObject(ctx, m.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("minio upload failed: %w", err)
	}
	return key, nil
}

// Delete removes an object; NoSuchKey counts as success
func (m *MinioStorage) Delete(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) && minioErr.Code == "NoSuchKey" {
		return nil
	}
	return fmt.Errorf("minio delete failed: %w", err)
}

func (m *MinioStorage) URL(key string) string {
	return joinURL(m.baseURL, key)
}
