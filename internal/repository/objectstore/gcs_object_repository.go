package objectstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
)

// GCSObjectRepository writes artifacts to a Google Cloud Storage bucket
type GCSObjectRepository struct {
	client     *storage.Client
	bucketName string
}

// NewGCSObjectRepository creates a new GCS object repository
func NewGCSObjectRepository(client *storage.Client, bucketName string) GCSObjectRepository {
	return GCSObjectRepository{
		client:     client,
		bucketName: bucketName,
	}
}

// Upload uploads an object to GCS
func (r *GCSObjectRepository) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	writer := r.client.Bucket(r.bucketName).Object(key).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}

	log.Debugf("Uploading to GCS: %s", r.URI(key))
	if _, err := io.Copy(writer, reader); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}
	// The object is only committed once Close succeeds.
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}

	return r.URI(key), nil
}

// URI returns the gs:// URI of key in this bucket.
func (r *GCSObjectRepository) URI(key string) string {
	return fmt.Sprintf("gs://%s/%s", r.bucketName, key)
}

// GetBucketName returns the bucket name
func (r *GCSObjectRepository) GetBucketName() string {
	return r.bucketName
}

// GetStorageType returns the storage type
func (r *GCSObjectRepository) GetStorageType() string {
	return string(GCSType)
}
