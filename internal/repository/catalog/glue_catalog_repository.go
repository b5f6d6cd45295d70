// Package catalog resolves tables registered in the Glue Data Catalog.
package catalog

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/zzenonn/weatherpipe/internal/domain"
	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
)

// GlueAPI is the subset of *glue.Client used by GlueCatalogRepository.
type GlueAPI interface {
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
}

// GlueCatalogRepository manages Glue Data Catalog lookups.
type GlueCatalogRepository struct {
	client GlueAPI
}

// NewGlueCatalogRepository initializes a new GlueCatalogRepository.
func NewGlueCatalogRepository(client GlueAPI) GlueCatalogRepository {
	return GlueCatalogRepository{client: client}
}

// NewGlueCatalogRepositoryFromConfig builds the repository on a fresh Glue client.
func NewGlueCatalogRepositoryFromConfig(awsConfig aws.Config) GlueCatalogRepository {
	return NewGlueCatalogRepository(glue.NewFromConfig(awsConfig))
}

// GetTable returns the storage location and schema of database.table. The
// location is returned as stored; callers normalize it.
func (r *GlueCatalogRepository) GetTable(ctx context.Context, database, table string) (domain.TableDescriptor, error) {
	out, err := r.client.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(table),
	})
	if err != nil {
		return domain.TableDescriptor{}, fmt.Errorf("failed to get table %s.%s: %w", database, table, err)
	}

	if out.Table == nil || out.Table.StorageDescriptor == nil || aws.ToString(out.Table.StorageDescriptor.Location) == "" {
		return domain.TableDescriptor{}, fmt.Errorf("%s.%s: %w", database, table, apperrors.ErrNoStorageLocation)
	}

	descriptor := domain.TableDescriptor{
		Database: database,
		Table:    table,
		Location: aws.ToString(out.Table.StorageDescriptor.Location),
	}

	for _, col := range out.Table.StorageDescriptor.Columns {
		descriptor.Columns = append(descriptor.Columns, domain.Column{
			Name: aws.ToString(col.Name),
			Type: aws.ToString(col.Type),
		})
	}
	for _, key := range out.Table.PartitionKeys {
		descriptor.Columns = append(descriptor.Columns, domain.Column{
			Name:        aws.ToString(key.Name),
			Type:        aws.ToString(key.Type),
			IsPartition: true,
		})
		descriptor.PartitionKeys = append(descriptor.PartitionKeys, domain.PartitionKey{
			Name: aws.ToString(key.Name),
			Type: aws.ToString(key.Type),
		})
	}

	return descriptor, nil
}
