// Package gcs stores objects in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ProviderType identifies this backend in configuration.
const ProviderType = "gcs"

// Config holds construction parameters.
type Config struct {
	Bucket          string
	Prefix          string
	CredentialsFile string // optional; application default credentials otherwise
	Endpoint        string // optional; emulators such as fake-gcs-server
}

// Store implements the archive store on one bucket.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// New creates a client for cfg.Bucket.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &Store{client: client, bucket: client.Bucket(cfg.Bucket), prefix: cfg.Prefix}, nil
}

func (s *Store) Type() string { return ProviderType }

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) key(objectName string) string {
	if s.prefix == "" {
		return objectName
	}
	return strings.TrimSuffix(s.prefix, "/") + "/" + objectName
}

func (s *Store) Upload(ctx context.Context, objectName string, data io.Reader, contentType string) error {
	w := s.bucket.Object(s.key(objectName)).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload '%s': %w", objectName, err)
	}
	return w.Close()
}

func (s *Store) Download(ctx context.Context, objectName string) (io.ReadCloser, error) {
	return s.bucket.Object(s.key(objectName)).NewReader(ctx)
}

func (s *Store) List(ctx context.Context, prefix string, fn func(objectName string) error) error {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.key(prefix)})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		name := attrs.Name
		if s.prefix != "" {
			name = strings.TrimPrefix(name, strings.TrimSuffix(s.prefix, "/")+"/")
		}
		if err := fn(name); err != nil {
			return err
		}
	}
}

func (s *Store) Delete(ctx context.Context, objectName string) error {
	err := s.bucket.Object(s.key(objectName)).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
