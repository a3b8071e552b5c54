// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/camunda/camunda-sub024/lib/resource"
	"github.com/camunda/camunda-sub024/lib/versioning"
)

// ContentType is the media type objects are stored with.
const ContentType = "application/cbor"

// Config locates the bucket.
type Config struct {
	// Endpoint is host[:port] without a scheme.
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool

	// Prefix is prepended to every object name. Empty means the
	// bucket root.
	Prefix string
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Endpoint) == "" {
		errs = append(errs, errors.New("endpoint is required"))
	} else if strings.Contains(c.Endpoint, "://") {
		errs = append(errs, fmt.Errorf("endpoint must not include a scheme: %q", c.Endpoint))
	}
	if strings.TrimSpace(c.Bucket) == "" {
		errs = append(errs, errors.New("bucket is required"))
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		errs = append(errs, errors.New("access key is required"))
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	return errors.Join(errs...)
}

// Store is a content store backed by one bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// Open connects to the endpoint and creates the bucket if it does not
// exist yet. A nil logger discards.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("object store: client for %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("object store: checking bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("object store: creating bucket %q: %w", cfg.Bucket, err)
		}
		logger.Info("created content bucket", "bucket", cfg.Bucket, "endpoint", cfg.Endpoint)
	}

	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, logger: logger}, nil
}

// ObjectName is the object a content record of kind and key lives in.
func ObjectName(prefix string, kind resource.Kind, key int64) string {
	return path.Join(prefix, kind.String(), strconv.FormatInt(key, 10)+".cbor")
}

// PutContent uploads the encoded content record, replacing any
// object with the same name.
func (s *Store) PutContent(ctx context.Context, content resource.Content) error {
	encoded, err := content.Marshal()
	if err != nil {
		return fmt.Errorf("object store: encoding %v %d: %w", content.Kind(), content.ResourceKey(), err)
	}
	name := ObjectName(s.prefix, content.Kind(), content.ResourceKey())
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(encoded), int64(len(encoded)),
		minio.PutObjectOptions{
			ContentType: ContentType,
			UserMetadata: map[string]string{
				"tenant-id":     content.TenantID(),
				"resource-id":   content.ResourceID(),
				"resource-name": content.ResourceName(),
				"version":       strconv.FormatInt(int64(content.Version()), 10),
			},
		})
	if err != nil {
		return fmt.Errorf("object store: uploading %s: %w", name, err)
	}
	s.logger.Debug("uploaded content record",
		"object", name,
		"tenant_id", content.TenantID(),
		"size", len(encoded),
	)
	return nil
}

// GetContent downloads the encoded content record of kind and key.
// A missing object is reported as versioning.ErrNotFound.
func (s *Store) GetContent(ctx context.Context, kind resource.Kind, key int64) ([]byte, error) {
	name := ObjectName(s.prefix, kind, key)
	object, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.readError(name, err)
	}
	defer object.Close()

	// GetObject is lazy: a missing key surfaces on the first read.
	encoded, err := io.ReadAll(object)
	if err != nil {
		return nil, s.readError(name, err)
	}
	return encoded, nil
}

func (s *Store) readError(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: object %s", versioning.ErrNotFound, name)
	}
	return fmt.Errorf("object store: downloading %s: %w", name, err)
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}
