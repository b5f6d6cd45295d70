package db

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/zzenonn/weatherpipe/internal/domain"
)

// DynamoDBAPI is the subset of *dynamodb.Client used by ExtractionRepository.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ExtractionRepository manages DynamoDB interactions for ExtractionEntry.
type ExtractionRepository struct {
	client    DynamoDBAPI
	tableName string
}

// NewExtractionRepository initializes a new ExtractionRepository.
func NewExtractionRepository(client DynamoDBAPI, tableName string) ExtractionRepository {
	return ExtractionRepository{
		client:    client,
		tableName: tableName,
	}
}

// CreateExtraction stores one extraction. Re-running within the same second
// replaces the entry.
func (repo *ExtractionRepository) CreateExtraction(ctx context.Context, entry domain.ExtractionEntry) (domain.ExtractionEntry, error) {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return domain.ExtractionEntry{}, fmt.Errorf("failed to marshal extraction: %w", err)
	}

	if _, err := repo.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(repo.tableName),
		Item:      item,
	}); err != nil {
		return domain.ExtractionEntry{}, fmt.Errorf("failed to create extraction: %w", err)
	}

	return entry, nil
}

// ListExtractions returns the newest extractions of a table first, at most limit.
func (repo *ExtractionRepository) ListExtractions(ctx context.Context, tableName string, limit int32) ([]domain.ExtractionEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(repo.tableName),
		KeyConditionExpression: aws.String("#table_name = :table_name"),
		ExpressionAttributeNames: map[string]string{
			"#table_name": "table_name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":table_name": &types.AttributeValueMemberS{Value: tableName},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	result, err := repo.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query extractions of %s: %w", tableName, err)
	}

	entries := make([]domain.ExtractionEntry, 0, len(result.Items))
	for _, item := range result.Items {
		var entry domain.ExtractionEntry
		if err := attributevalue.UnmarshalMap(item, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extraction: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
