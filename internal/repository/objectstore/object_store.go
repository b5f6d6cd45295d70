package objectstore

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/zzenonn/weatherpipe/internal/domain"
)

// S3Store lists objects in arbitrary buckets through one shared client.
type S3Store struct {
	Client S3API
}

func NewS3ObjectStore(awsConfig aws.Config) *S3Store {
	return &S3Store{
		Client: s3.NewFromConfig(awsConfig),
	}
}

// ListObjects lists prefix in bucket, capped at maxItems.
func (s *S3Store) ListObjects(ctx context.Context, bucket, prefix string, maxItems int) ([]domain.ObjectRecord, error) {
	repo := NewS3ObjectRepository(s.Client, bucket)
	return repo.List(ctx, prefix, maxItems)
}
