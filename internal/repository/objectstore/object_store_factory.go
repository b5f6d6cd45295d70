// Package objectstore provides object storage repository implementations and factory.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// ObjectRepository writes metadata artifacts to one bucket
type ObjectRepository interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	URI(key string) string
	GetBucketName() string
	GetStorageType() string
}

// RepositoryType represents the type of object storage
type RepositoryType string

const (
	S3Type  RepositoryType = "s3"
	GCSType RepositoryType = "gcs"
)

// BucketConfig holds configuration for a storage bucket
type BucketConfig struct {
	Name string
	Type RepositoryType
}

// ObjectRepositoryFactory creates object repository instances
type ObjectRepositoryFactory struct {
	s3Client  S3API
	gcsClient *storage.Client
}

// NewObjectRepositoryFactory creates a new factory
func NewObjectRepositoryFactory(s3Client S3API, gcsClient *storage.Client) *ObjectRepositoryFactory {
	return &ObjectRepositoryFactory{
		s3Client:  s3Client,
		gcsClient: gcsClient,
	}
}

// CreateRepository creates a repository based on bucket configuration
func (f *ObjectRepositoryFactory) CreateRepository(config BucketConfig) (ObjectRepository, error) {
	switch config.Type {
	case S3Type:
		if f.s3Client == nil {
			return nil, fmt.Errorf("S3 client not configured")
		}
		repo := NewS3ObjectRepository(f.s3Client, config.Name)
		return &repo, nil
	case GCSType:
		if f.gcsClient == nil {
			return nil, fmt.Errorf("GCS client not configured")
		}
		repo := NewGCSObjectRepository(f.gcsClient, config.Name)
		return &repo, nil
	default:
		return nil, fmt.Errorf("unsupported repository type: %s", config.Type)
	}
}

var schemeTypes = map[string]RepositoryType{
	"s3": S3Type,
	"gs": GCSType,
}

// ParseBucketConfig reads a results bucket reference: "s3://bucket",
// "gs://bucket", "gs:bucket" or a bare bucket name, which means S3. A key
// prefix after the bucket is rejected since artifact keys are fixed.
func ParseBucketConfig(bucketStr string) (BucketConfig, error) {
	bucketStr = strings.TrimSpace(bucketStr)
	scheme, name := "s3", bucketStr

	if before, after, ok := strings.Cut(bucketStr, ":"); ok {
		scheme = strings.ToLower(strings.TrimSpace(before))
		name = strings.TrimPrefix(strings.TrimSpace(after), "//")
	}
	name = strings.TrimRight(name, "/")

	repoType, ok := schemeTypes[scheme]
	if !ok {
		return BucketConfig{}, fmt.Errorf("unsupported scheme: %s", scheme)
	}
	if name == "" {
		return BucketConfig{}, fmt.Errorf("bucket name cannot be empty")
	}
	if strings.Contains(name, "/") {
		return BucketConfig{}, fmt.Errorf("bucket URI must not contain a key prefix: %s", bucketStr)
	}

	return BucketConfig{Name: name, Type: repoType}, nil
}
