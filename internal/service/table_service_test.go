package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/weatherpipe/internal/domain"
	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
	"github.com/zzenonn/weatherpipe/internal/service"
)

type runCall struct {
	sql      string
	database string
}

// mockQueryRunner answers each Run in order; missing entries succeed.
type mockQueryRunner struct {
	results   []error
	states    []domain.QueryState
	scalar    *string
	scalarErr error

	calls []runCall
}

func (m *mockQueryRunner) Run(ctx context.Context, sql, database string) (domain.QueryExecution, error) {
	i := len(m.calls)
	m.calls = append(m.calls, runCall{sql: sql, database: database})

	exec := domain.QueryExecution{ID: fmt.Sprintf("q-%d", i), State: domain.QuerySucceeded}
	if i < len(m.states) && m.states[i] != "" {
		exec.State = m.states[i]
	}
	if i < len(m.results) && m.results[i] != nil {
		exec.State = domain.QueryFailed
		return exec, m.results[i]
	}
	return exec, nil
}

func (m *mockQueryRunner) Scalar(ctx context.Context, id string) (*string, error) {
	return m.scalar, m.scalarErr
}

func tableSettings() service.TableSettings {
	return service.TableSettings{
		Database:            "weather-db",
		SourceTable:         "raw_tbl",
		TransformedTable:    "parquet_tbl",
		TransformedLocation: "s3://data-bucket/",
		ProdTable:           "parquet_tbl_PROD",
		ProdLocation:        "s3://prod-bucket/",
	}
}

func TestCreateTransformedSQL(t *testing.T) {
	sql := service.CreateTransformedSQL("weather-db", "raw_tbl", "parquet_tbl", "s3://data-bucket/transformed_data/")

	assert.Contains(t, sql, `CREATE TABLE "weather-db".parquet_tbl WITH`)
	assert.Contains(t, sql, "external_location='s3://data-bucket/transformed_data/'")
	assert.Contains(t, sql, "format='PARQUET'")
	assert.Contains(t, sql, "write_compression='SNAPPY'")
	assert.Contains(t, sql, "partitioned_by = ARRAY['yr_mo_partition']")
	assert.Contains(t, sql, "SELECT DISTINCT")
	assert.Contains(t, sql, "temp AS temp_F")
	assert.Contains(t, sql, "(temp - 32) * (5.0/9.0) AS temp_C")
	assert.Contains(t, sql, "SUBSTRING(time,1,7) AS yr_mo_partition")
	assert.Contains(t, sql, `FROM "weather-db"."raw_tbl"`)
}

func TestDropSQL(t *testing.T) {
	assert.Equal(t, `DROP TABLE IF EXISTS "weather-db".parquet_tbl`, service.DropTransformedSQL("weather-db", "parquet_tbl"))
	assert.Equal(t, "DROP TABLE IF EXISTS parquet_tbl", service.DropTableSQL("parquet_tbl"))
}

func TestTableService_CreateTransformedTable(t *testing.T) {
	runner := &mockQueryRunner{}
	svc := service.NewTableService(runner, tableSettings())

	exec, err := svc.CreateTransformedTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.QuerySucceeded, exec.State)

	require.Len(t, runner.calls, 2)
	assert.Equal(t, `DROP TABLE IF EXISTS "weather-db".parquet_tbl`, runner.calls[0].sql)
	assert.Contains(t, runner.calls[1].sql, "external_location='s3://data-bucket/transformed_data/'")
	for _, call := range runner.calls {
		assert.Equal(t, "weather-db", call.database)
	}
}

func TestTableService_CreateContinuesAfterDropFailure(t *testing.T) {
	runner := &mockQueryRunner{results: []error{errors.New("access denied")}}
	svc := service.NewTableService(runner, tableSettings())

	_, err := svc.CreateTransformedTable(context.Background())
	require.NoError(t, err)
	assert.Len(t, runner.calls, 2)
}

func TestTableService_CreateFailure(t *testing.T) {
	runner := &mockQueryRunner{results: []error{nil, apperrors.QueryFailedError("SYNTAX_ERROR")}}
	svc := service.NewTableService(runner, tableSettings())

	_, err := svc.CreateTransformedTable(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQueryFailed)
	assert.Contains(t, err.Error(), "SYNTAX_ERROR")
}

func TestTableService_DropTable(t *testing.T) {
	runner := &mockQueryRunner{}
	svc := service.NewTableService(runner, tableSettings())

	_, err := svc.DropTable(context.Background(), "parquet_tbl")
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "DROP TABLE IF EXISTS parquet_tbl", runner.calls[0].sql)
	assert.Equal(t, "weather-db", runner.calls[0].database)
}

func TestTableService_PublishProdTable(t *testing.T) {
	runner := &mockQueryRunner{}
	svc := service.NewTableService(runner, tableSettings())
	svc.SetClock(func() time.Time {
		return time.Date(2025, 4, 17, 2, 58, 16, 622979000, time.UTC)
	})

	name, _, err := svc.PublishProdTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "parquet_tbl_PROD_2025_04_17_02_58_16_622979", name)

	require.Len(t, runner.calls, 1)
	sql := runner.calls[0].sql
	assert.Contains(t, sql, "CREATE TABLE parquet_tbl_PROD_2025_04_17_02_58_16_622979 WITH")
	assert.Contains(t, sql, "external_location='s3://prod-bucket/2025_04_17_02_58_16_622979/'")
	assert.Contains(t, sql, `FROM "weather-db"."parquet_tbl"`)
}

func TestProdSuffix(t *testing.T) {
	first := time.Date(2025, 4, 17, 2, 58, 16, 622979000, time.UTC)
	second := first.Add(250 * time.Microsecond)

	assert.Equal(t, "2025_04_17_02_58_16_622979", service.ProdSuffix(first))
	assert.Equal(t, "2025_04_17_02_58_16_623229", service.ProdSuffix(second))
	assert.Equal(t, "2025_04_17_02_58_16_000000", service.ProdSuffix(first.Truncate(time.Second)))
}

func TestTableService_PublishTwiceInOneSecond(t *testing.T) {
	runner := &mockQueryRunner{}
	svc := service.NewTableService(runner, tableSettings())

	ticks := []time.Time{
		time.Date(2025, 4, 17, 2, 58, 16, 100000000, time.UTC),
		time.Date(2025, 4, 17, 2, 58, 16, 900000000, time.UTC),
	}
	svc.SetClock(func() time.Time {
		now := ticks[0]
		ticks = ticks[1:]
		return now
	})

	first, _, err := svc.PublishProdTable(context.Background())
	require.NoError(t, err)
	second, _, err := svc.PublishProdTable(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "parquet_tbl_PROD_2025_04_17_02_58_16_100000", first)
	assert.Equal(t, "parquet_tbl_PROD_2025_04_17_02_58_16_900000", second)
	assert.Contains(t, runner.calls[1].sql, "external_location='s3://prod-bucket/2025_04_17_02_58_16_900000/'")
}
