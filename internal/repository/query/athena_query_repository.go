// Package query runs SQL on Athena and waits for it to finish.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/zzenonn/weatherpipe/internal/domain"
	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
)

// AthenaAPI is the subset of *athena.Client used by AthenaQueryRepository.
type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// AthenaQueryRepository manages Athena query executions.
type AthenaQueryRepository struct {
	client         AthenaAPI
	outputLocation string
	pollInterval   time.Duration
	maxPolls       uint
}

// NewAthenaQueryRepository initializes a new AthenaQueryRepository. maxPolls
// of zero polls until the context is done.
func NewAthenaQueryRepository(client AthenaAPI, outputLocation string, pollInterval time.Duration, maxPolls uint) AthenaQueryRepository {
	return AthenaQueryRepository{
		client:         client,
		outputLocation: outputLocation,
		pollInterval:   pollInterval,
		maxPolls:       maxPolls,
	}
}

// Run starts sql in database and blocks until it reaches a terminal state.
// A FAILED query is returned together with an error wrapping ErrQueryFailed.
func (r *AthenaQueryRepository) Run(ctx context.Context, sql, database string) (domain.QueryExecution, error) {
	id, err := r.Start(ctx, sql, database)
	if err != nil {
		return domain.QueryExecution{}, err
	}
	return r.Wait(ctx, id)
}

// Start submits sql and returns its execution id.
func (r *AthenaQueryRepository) Start(ctx context.Context, sql, database string) (string, error) {
	out, err := r.client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString:        aws.String(sql),
		ClientRequestToken: aws.String(uuid.NewString()),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(database),
		},
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: aws.String(r.outputLocation),
		},
	})
	if err != nil {
		return "", fmt.Errorf("error executing Athena query: %w", err)
	}

	id := aws.ToString(out.QueryExecutionId)
	log.Debugf("Started Athena query %s", id)
	return id, nil
}

// Wait polls the execution until it is SUCCEEDED, FAILED or CANCELLED.
func (r *AthenaQueryRepository) Wait(ctx context.Context, id string) (domain.QueryExecution, error) {
	exec := domain.QueryExecution{ID: id}

	err := retry.Do(
		func() error {
			out, err := r.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
				QueryExecutionId: aws.String(id),
			})
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to get query execution %s: %w", id, err))
			}

			exec = toExecution(id, out)
			if !exec.State.Terminal() {
				return apperrors.ErrQueryNotFinished
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.maxPolls),
		retry.Delay(r.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if errors.Is(err, apperrors.ErrQueryNotFinished) {
				log.Tracef("Query %s is %s (poll %d)", id, exec.State, n+1)
			}
		}),
	)
	if err != nil {
		return exec, err
	}

	switch exec.State {
	case domain.QueryFailed:
		return exec, apperrors.QueryFailedError(exec.Reason)
	case domain.QueryCancelled:
		log.Warnf("Query %s was cancelled", id)
	}
	return exec, nil
}

// Scalar returns the first data cell of a finished query, or nil when the
// result is empty or the cell is NULL.
func (r *AthenaQueryRepository) Scalar(ctx context.Context, id string) (*string, error) {
	out, err := r.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(id),
		MaxResults:       aws.Int32(2),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get results of query %s: %w", id, err)
	}
	if out.ResultSet == nil || len(out.ResultSet.Rows) < 2 {
		return nil, nil
	}

	// Row 0 holds the column headers.
	row := out.ResultSet.Rows[1]
	if len(row.Data) == 0 {
		return nil, nil
	}
	return row.Data[0].VarCharValue, nil
}

func toExecution(id string, out *athena.GetQueryExecutionOutput) domain.QueryExecution {
	exec := domain.QueryExecution{ID: id}
	if out.QueryExecution == nil || out.QueryExecution.Status == nil {
		return exec
	}
	exec.State = domain.QueryState(out.QueryExecution.Status.State)
	exec.Reason = aws.ToString(out.QueryExecution.Status.StateChangeReason)
	return exec
}
