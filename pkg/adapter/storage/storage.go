// Package storage defines the object store the report archive is written to,
// with local file system, Google Cloud Storage and S3 backends.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/tigerroll/weekreport/pkg/adapter/storage/gcs"
	"github.com/tigerroll/weekreport/pkg/adapter/storage/local"
	"github.com/tigerroll/weekreport/pkg/adapter/storage/s3"
	"github.com/tigerroll/weekreport/pkg/config"
)

// Store is a flat object store rooted at a bucket (or directory) and an optional prefix.
type Store interface {
	// Upload writes data under objectName, replacing any existing object.
	Upload(ctx context.Context, objectName string, data io.Reader, contentType string) error
	// Download opens objectName. The caller closes the reader.
	Download(ctx context.Context, objectName string) (io.ReadCloser, error)
	// List calls fn for each object whose name starts with prefix.
	List(ctx context.Context, prefix string, fn func(objectName string) error) error
	// Delete removes objectName. Deleting a missing object is not an error.
	Delete(ctx context.Context, objectName string) error
	Type() string
	Close() error
}

// Open creates the Store selected by weekreport.archive.storage.
func Open(ctx context.Context, cfg config.ArchiveConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Storage {
	case local.ProviderType, "":
		var s *local.Store
		s, err = local.New(cfg.BaseDir)
		store = s
	case gcs.ProviderType:
		var s *gcs.Store
		s, err = gcs.New(ctx, gcs.Config{
			Bucket:          cfg.Bucket,
			Prefix:          cfg.Prefix,
			CredentialsFile: cfg.CredentialsFile,
			Endpoint:        cfg.Endpoint,
		})
		store = s
	case s3.ProviderType:
		var s *s3.Store
		s, err = s3.New(ctx, s3.Config{
			Bucket:          cfg.Bucket,
			Prefix:          cfg.Prefix,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			PathStyle:       cfg.PathStyle,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		})
		store = s
	default:
		return nil, fmt.Errorf("unknown archive storage %q", cfg.Storage)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}
