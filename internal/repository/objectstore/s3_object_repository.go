package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
	"github.com/zzenonn/weatherpipe/internal/domain"
)

// S3API is the subset of *s3.Client used by S3ObjectRepository.
type S3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ObjectRepository manages S3 interactions for a single bucket.
type S3ObjectRepository struct {
	client     S3API
	bucketName string
}

// NewS3ObjectRepository initializes a new S3ObjectRepository.
func NewS3ObjectRepository(client S3API, bucketName string) S3ObjectRepository {
	return S3ObjectRepository{
		client:     client,
		bucketName: bucketName,
	}
}

// GetBucketName returns the bucket name.
func (r *S3ObjectRepository) GetBucketName() string {
	return r.bucketName
}

// GetStorageType returns the object store type.
func (r *S3ObjectRepository) GetStorageType() string {
	return string(S3Type)
}

// URI returns the s3:// URI of key in this bucket.
func (r *S3ObjectRepository) URI(key string) string {
	return fmt.Sprintf("s3://%s/%s", r.bucketName, key)
}

// Upload writes an object to S3 and returns its URI. An empty contentType leaves
// the header unset.
func (r *S3ObjectRepository) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(r.bucketName),
		Key:    aws.String(key),
		Body:   reader,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", r.URI(key), err)
	}
	return r.URI(key), nil
}

// List returns the objects under prefix, following continuation tokens until
// the listing is exhausted or maxItems objects were collected. maxItems <= 0
// means no cap.
func (r *S3ObjectRepository) List(ctx context.Context, prefix string, maxItems int) ([]domain.ObjectRecord, error) {
	prefix = strings.TrimPrefix(prefix, "/")
	log.Debugf("Listing objects in bucket '%s' with prefix '%s'", r.bucketName, prefix)

	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucketName),
		Prefix: aws.String(prefix),
	}, func(o *s3.ListObjectsV2PaginatorOptions) {
		if maxItems > 0 && maxItems < 1000 {
			o.Limit = int32(maxItems)
		}
	})

	var objects []domain.ObjectRecord
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", r.bucketName, prefix, err)
		}

		for _, obj := range page.Contents {
			objects = append(objects, domain.ObjectRecord{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: obj.LastModified,
				StorageClass: string(obj.StorageClass),
				ETag:         aws.ToString(obj.ETag),
			})
			if maxItems > 0 && len(objects) >= maxItems {
				log.Debugf("Reached listing cap of %d items for s3://%s/%s", maxItems, r.bucketName, prefix)
				return objects, nil
			}
		}
	}

	log.Debugf("Retrieved %d objects from s3://%s/%s", len(objects), r.bucketName, prefix)
	return objects, nil
}
