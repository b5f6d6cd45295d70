package migrate

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultLedgerTableName  = "weather_metadata_extractions"
	ExtractionLedgerVersion = "20250417000000_extraction_ledger_table"
)

type CreateExtractionLedgerTable struct {
	Table       string
	WaitTimeout time.Duration
}

func (m *CreateExtractionLedgerTable) Version() string {
	return ExtractionLedgerVersion
}

func (m *CreateExtractionLedgerTable) TableName() string {
	if m.Table == "" {
		return DefaultLedgerTableName
	}
	return m.Table
}

func (m *CreateExtractionLedgerTable) Up(ctx context.Context, client TableAPI) error {
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("table_name"),
				AttributeType: types.ScalarAttributeTypeS,
			},
			{
				AttributeName: aws.String("extraction_time"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("table_name"),
				KeyType:       types.KeyTypeHash, // Partition Key
			},
			{
				AttributeName: aws.String("extraction_time"),
				KeyType:       types.KeyTypeRange, // Sort Key
			},
		},
		TableName:   aws.String(m.TableName()),
		BillingMode: types.BillingModePayPerRequest,
		Tags: []types.Tag{
			{
				Key:   aws.String("Purpose"),
				Value: aws.String("WeatherMetadataExtractionLedger"),
			},
		},
	}

	_, err := client.CreateTable(ctx, input)
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		log.Infof("Table %s already exists", m.TableName())
		return nil
	}
	if err != nil {
		return err
	}

	timeout := m.WaitTimeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	// Wait for table to become active
	waiter := dynamodb.NewTableExistsWaiter(client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(m.TableName()),
	}, timeout)
}

func (m *CreateExtractionLedgerTable) Down(ctx context.Context, client TableAPI) error {
	_, err := client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(m.TableName()),
	})
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}
