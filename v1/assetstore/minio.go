package assetstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Aleph-Alpha/image-embedder/v1/observability"
)

const connectTimeout = 30 * time.Second

// MinioSource reads assets from a MinIO bucket. Object keys are the asset
// names joined to the configured prefix.
type MinioSource struct {
	// Client is the underlying MinIO client.
	Client *minio.Client

	cfg      MinioConfig
	logger   Logger
	observer observability.Observer
}

// NewMinioSource connects to MinIO and verifies that the configured bucket
// exists.
//
// Parameters:
//   - cfg: connection details and asset location
//   - logger: logger for connection diagnostics
//
// Returns an error when the connection cannot be established or the bucket
// is missing; assets are never created by this package.
func NewMinioSource(cfg MinioConfig, logger Logger) (*MinioSource, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		logger.Error("failed to create minio client", err, map[string]interface{}{
			"endpoint": cfg.Endpoint,
			"secure":   cfg.UseSSL,
		})
		return nil, fmt.Errorf("assetstore: connect to minio: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		logger.Error("failed to verify bucket", err, map[string]interface{}{
			"endpoint": cfg.Endpoint,
			"bucket":   cfg.BucketName,
		})
		return nil, fmt.Errorf("assetstore: check bucket %s: %w", cfg.BucketName, err)
	}
	if !exists {
		return nil, fmt.Errorf("assetstore: bucket %s does not exist", cfg.BucketName)
	}

	return &MinioSource{Client: client, cfg: cfg, logger: logger}, nil
}

// WithObserver attaches an observer notified after every object read.
// It returns the source for chaining and must be called before concurrent use.
func (m *MinioSource) WithObserver(observer observability.Observer) *MinioSource {
	m.observer = observer
	return m
}

// ReadFile downloads the object for name. A missing object yields ErrNotFound.
func (m *MinioSource) ReadFile(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	key := m.objectKey(name)

	data, err := m.get(ctx, key)
	m.observeOperation("get", key, time.Since(start), err, int64(len(data)))
	return data, err
}

func (m *MinioSource) get(ctx context.Context, key string) ([]byte, error) {
	reader, err := m.Client.GetObject(ctx, m.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.translateError(key, err)
	}
	defer func(reader io.ReadCloser) {
		if err := reader.Close(); err != nil {
			m.logger.Error("failed to close object reader", err, map[string]interface{}{
				"key": key,
			})
		}
	}(reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, m.translateError(key, err)
	}
	return data, nil
}

func (m *MinioSource) objectKey(name string) string {
	if m.cfg.Prefix == "" {
		return name
	}
	return path.Join(m.cfg.Prefix, name)
}

func (m *MinioSource) translateError(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s/%s", ErrNotFound, m.cfg.BucketName, key)
	}
	return fmt.Errorf("assetstore: get %s/%s: %w", m.cfg.BucketName, key, err)
}

func (m *MinioSource) observeOperation(operation, key string, duration time.Duration, err error, size int64) {
	if m == nil || m.observer == nil {
		return
	}
	m.observer.ObserveOperation(observability.OperationContext{
		Component:   "assetstore",
		Operation:   operation,
		Resource:    m.cfg.BucketName,
		SubResource: key,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}
