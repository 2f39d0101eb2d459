// Package objstore wraps the MinIO client used to host campground
// images. Uploads return the {url, key} pair stored on the campground
// document; deletes are keyed by that storage key.
package objstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/iliyamo/campground-listings/internal/config"
)

// StoredImage is the result of one upload.
type StoredImage struct {
	URL string
	Key string
}

// Client is the image host handle shared by handlers and the cleanup
// consumer.
type Client struct {
	mc        *minio.Client
	bucket    string
	publicURL string
}

// NewClient builds a MinIO client from config. The endpoint and
// credentials are required; the bucket is created on demand by
// EnsureBucket.
func NewClient(cfg config.Config) (*Client, error) {
	if cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
		return nil, fmt.Errorf("minio access and secret keys are required")
	}
	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	publicURL := cfg.MinioPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}
	return &Client{mc: mc, bucket: cfg.MinioBucket, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// EnsureBucket creates the image bucket when it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		log.Printf("objstore: created bucket %s", c.bucket)
	}
	return nil
}

// Upload stores one image blob under a fresh storage key and returns
// the public URL plus the key used for later deletion. The original
// filename only contributes its extension.
func (c *Client) Upload(ctx context.Context, filename, contentType string, reader io.Reader, size int64) (StoredImage, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := uuid.NewString() + strings.ToLower(path.Ext(filename))
	_, err := c.mc.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return StoredImage{}, fmt.Errorf("upload %s: %w", key, err)
	}
	return StoredImage{URL: c.publicURL + "/" + key, Key: key}, nil
}

// Delete removes one blob by storage key. Deleting a missing object is
// a no-op on the MinIO side, which keeps the cleanup consumer
// idempotent.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
}
