package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/johnquangdev/capture-stitcher/pkg/config"
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// MinIOClient wraps MinIO operations
type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string // Public URL for generating accessible URLs (e.g., https://minio.example.com)
	logger    *zap.Logger
}

// NewMinIOClient creates a new MinIO client
func NewMinIOClient(cfg *config.StorageConfig, logger *zap.Logger) (*MinIOClient, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	client := &MinIOClient{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		logger:    logger,
	}

	if err := client.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return client, nil
}

// ensureBucket creates the bucket when it does not exist
func (m *MinIOClient) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// retry runs fn with exponential backoff. Missing objects and bad requests are not retried.
func (m *MinIOClient) retry(ctx context.Context, operation string, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxElapsedTime = 30 * time.Second
	bo.MaxInterval = 10 * time.Second

	attempt := 0
	op := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		if m.logger != nil {
			m.logger.Warn("⚠️ Storage operation failed, retrying",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	}

	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}

func isPermanent(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "AccessDenied", "InvalidArgument", "InvalidObjectName":
		return true
	}
	return false
}

// List lists all objects under prefix
func (m *MinIOClient) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	objectCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects under %s: %w", prefix, object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}

	return objects, nil
}

// UploadFile uploads a local file
func (m *MinIOClient) UploadFile(ctx context.Context, key, filePath, contentType string) error {
	err := m.retry(ctx, "upload", func() error {
		_, err := m.client.FPutObject(ctx, m.bucket, key, filePath, minio.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to %s: %w", filePath, key, err)
	}

	if m.logger != nil {
		m.logger.Info("📤 Uploaded artifact", zap.String("key", key))
	}
	return nil
}

// DownloadPrefix downloads every object under prefix into dir, keeping the key layout
// below the prefix. It returns the local paths written.
func (m *MinIOClient) DownloadPrefix(ctx context.Context, prefix, dir string) ([]string, error) {
	objects, err := m.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, object := range objects {
		if strings.HasSuffix(object.Key, "/") {
			continue
		}

		dest, err := LocalPath(dir, prefix, object.Key)
		if err != nil {
			return nil, err
		}

		err = m.retry(ctx, "download", func() error {
			return m.client.FGetObject(ctx, m.bucket, object.Key, dest, minio.GetObjectOptions{})
		})
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", object.Key, err)
		}
		paths = append(paths, dest)
	}

	if m.logger != nil {
		m.logger.Info("📥 Downloaded objects",
			zap.String("prefix", prefix),
			zap.Int("count", len(paths)))
	}
	return paths, nil
}

// LocalPath maps an object key below prefix to a path inside dir.
// Keys that would escape dir are rejected.
func LocalPath(dir, prefix, key string) (string, error) {
	rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
	rel = path.Clean("/" + rel)[1:]
	if rel == "" {
		return "", fmt.Errorf("object key %s has no name below %s", key, prefix)
	}

	dest := filepath.Join(dir, filepath.FromSlash(rel))
	if !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("object key %s escapes %s", key, dir)
	}
	return dest, nil
}

// GetFileURL gets a presigned URL for accessing a file
func (m *MinIOClient) GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	// Replace the internal endpoint with public URL when MinIO sits behind a proxy
	if m.publicURL != "" {
		return m.publicURL + url.RequestURI(), nil
	}

	return url.String(), nil
}

// GetBucketInfo returns information about the bucket and connection
func (m *MinIOClient) GetBucketInfo(ctx context.Context) (map[string]interface{}, error) {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	return map[string]interface{}{
		"bucket":        m.bucket,
		"bucket_exists": exists,
		"endpoint":      m.client.EndpointURL().String(),
	}, nil
}
