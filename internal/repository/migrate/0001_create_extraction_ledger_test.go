package migrate_test

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/weatherpipe/internal/repository/migrate"
)

type fakeTableClient struct {
	createErr error
	deleteErr error
	created   []dynamodb.CreateTableInput
	deleted   []string
}

func (f *fakeTableClient) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, *params)
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeTableClient) DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.ToString(params.TableName))
	return &dynamodb.DeleteTableOutput{}, nil
}

func (f *fakeTableClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   params.TableName,
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

func TestMigrationsOrder(t *testing.T) {
	migrations := migrate.Migrations("ledger")
	require.Len(t, migrations, 1)
	assert.Equal(t, migrate.ExtractionLedgerVersion, migrations[0].Version())
	assert.Equal(t, "ledger", migrations[0].TableName())

	assert.Equal(t, migrate.DefaultLedgerTableName, migrate.Migrations("")[0].TableName())
}

func TestCreateExtractionLedgerUp(t *testing.T) {
	client := &fakeTableClient{}
	m := &migrate.CreateExtractionLedgerTable{Table: "ledger", WaitTimeout: time.Second}

	require.NoError(t, m.Up(context.Background(), client))
	require.Len(t, client.created, 1)

	input := client.created[0]
	assert.Equal(t, "ledger", aws.ToString(input.TableName))
	assert.Equal(t, types.BillingModePayPerRequest, input.BillingMode)
	require.Len(t, input.KeySchema, 2)
	assert.Equal(t, "table_name", aws.ToString(input.KeySchema[0].AttributeName))
	assert.Equal(t, types.KeyTypeHash, input.KeySchema[0].KeyType)
	assert.Equal(t, "extraction_time", aws.ToString(input.KeySchema[1].AttributeName))
	assert.Equal(t, types.KeyTypeRange, input.KeySchema[1].KeyType)
}

func TestCreateExtractionLedgerAlreadyExists(t *testing.T) {
	client := &fakeTableClient{createErr: &types.ResourceInUseException{Message: aws.String("exists")}}
	m := &migrate.CreateExtractionLedgerTable{Table: "ledger"}

	assert.NoError(t, m.Up(context.Background(), client))
}

func TestCreateExtractionLedgerDown(t *testing.T) {
	client := &fakeTableClient{}
	m := &migrate.CreateExtractionLedgerTable{Table: "ledger"}

	require.NoError(t, m.Down(context.Background(), client))
	assert.Equal(t, []string{"ledger"}, client.deleted)

	missing := &fakeTableClient{deleteErr: &types.ResourceNotFoundException{Message: aws.String("gone")}}
	assert.NoError(t, m.Down(context.Background(), missing))
}
