// Package backup uploads backup payloads to S3-compatible object storage.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
)

const contentTypeJSON = "application/json"

// MinioConfig locates the bucket. AccessKeyID is the persisted backup client
// id; Folder becomes the object prefix.
type MinioConfig struct {
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Folder          string
}

// MinioUploader upserts named objects into one bucket folder.
type MinioUploader struct {
	client *minio.Client
	bucket string
	folder string
}

// NewMinioUploader builds a client for cfg. No network call is made until
// the first upload.
func NewMinioUploader(cfg MinioConfig) (*MinioUploader, error) {
	if cfg.AccessKeyID == "" {
		return nil, fmt.Errorf("%w: backup client id is not configured", inventorydomain.ErrTransport)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: minio client: %w", inventorydomain.ErrTransport, err)
	}
	return &MinioUploader{client: client, bucket: cfg.Bucket, folder: cfg.Folder}, nil
}

// ObjectKey returns the key name is stored under.
func (u *MinioUploader) ObjectKey(name string) string {
	return objectKey(u.folder, name)
}

func objectKey(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// Upsert writes data under name, replacing an existing object in place.
// created reports whether no object existed before. All failures wrap
// ErrTransport.
func (u *MinioUploader) Upsert(ctx context.Context, name string, data []byte) (created bool, err error) {
	key := u.ObjectKey(name)

	if _, err := u.client.StatObject(ctx, u.bucket, key, minio.StatObjectOptions{}); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code != "NoSuchKey" && resp.StatusCode != http.StatusNotFound {
			return false, fmt.Errorf("%w: stat %s: %w", inventorydomain.ErrTransport, key, err)
		}
		created = true
	}

	if _, err := u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeJSON,
	}); err != nil {
		return false, fmt.Errorf("%w: put %s: %w", inventorydomain.ErrTransport, key, err)
	}
	return created, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (u *MinioUploader) EnsureBucket(ctx context.Context) error {
	ok, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("%w: bucket exists: %w", inventorydomain.ErrTransport, err)
	}
	if ok {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("%w: make bucket: %w", inventorydomain.ErrTransport, err)
	}
	return nil
}
