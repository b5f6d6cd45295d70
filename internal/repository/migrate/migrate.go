// Package migrate creates and removes the DynamoDB tables used by the pipeline.
package migrate

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// TableAPI is the subset of *dynamodb.Client migrations need.
type TableAPI interface {
	dynamodb.DescribeTableAPIClient
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error)
}

type Migration interface {
	Version() string
	TableName() string
	Up(ctx context.Context, client TableAPI) error
	Down(ctx context.Context, client TableAPI) error
}

// Migrations lists every migration in the order they apply.
func Migrations(ledgerTable string) []Migration {
	return []Migration{
		&CreateExtractionLedgerTable{Table: ledgerTable},
	}
}
