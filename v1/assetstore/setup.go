package assetstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when an asset does not exist in the store.
var ErrNotFound = errors.New("asset not found")

// Logger defines the logging operations used by the asset store.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=assetstore
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Source reads preprocessing assets by slash-separated name relative to the
// store's base location, e.g. "bria_attribution_model_client/tokenizer/vocab.json".
// Implementations must be safe for concurrent use.
type Source interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// New creates the Source selected by cfg.Kind.
//
// Example:
//
//	src, err := assetstore.New(assetstore.Config{Kind: "dir", Dir: "/models"}, log)
//	if err != nil {
//	    return err
//	}
func New(cfg Config, logger Logger) (Source, error) {
	switch cfg.Kind {
	case "", KindDir:
		logger.Info("Using directory asset store", nil, map[string]interface{}{
			"dir": cfg.Dir,
		})
		return NewDirSource(cfg.Dir)
	case KindMinio:
		logger.Info("Using MinIO asset store", nil, map[string]interface{}{
			"endpoint": cfg.Minio.Endpoint,
			"bucket":   cfg.Minio.BucketName,
			"prefix":   cfg.Minio.Prefix,
		})
		return NewMinioSource(cfg.Minio, logger)
	default:
		return nil, fmt.Errorf("assetstore: unknown kind %q", cfg.Kind)
	}
}
