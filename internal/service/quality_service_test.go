package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/weatherpipe/internal/domain"
	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
	"github.com/zzenonn/weatherpipe/internal/service"
)

func TestNullCheckSQL(t *testing.T) {
	sql := service.NullCheckSQL("weather-db", "parquet_tbl")
	assert.Contains(t, sql, "SUM(CASE WHEN temp_C IS NULL THEN 1 ELSE 0 END) AS res_col")
	assert.Contains(t, sql, `FROM "weather-db"."parquet_tbl"`)
}

func TestQualityService_CheckNulls(t *testing.T) {
	tests := []struct {
		name      string
		scalar    *string
		wantNulls int64
		wantErr   error
	}{
		{name: "no nulls", scalar: strPtr("0")},
		{name: "empty table", scalar: nil},
		{name: "empty cell", scalar: strPtr("")},
		{name: "nulls found", scalar: strPtr("3"), wantNulls: 3, wantErr: apperrors.ErrQualityCheckFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockQueryRunner{scalar: tt.scalar}
			svc := service.NewQualityService(runner, "weather-db")

			nulls, err := svc.CheckNulls(context.Background(), "parquet_tbl")
			assert.Equal(t, tt.wantNulls, nulls)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, runner.calls, 1)
			assert.Equal(t, "weather-db", runner.calls[0].database)
		})
	}
}

func TestQualityService_QueryErrors(t *testing.T) {
	failed := &mockQueryRunner{results: []error{apperrors.QueryFailedError("TABLE_NOT_FOUND")}}
	_, err := service.NewQualityService(failed, "weather-db").CheckNulls(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrQueryFailed)

	cancelled := &mockQueryRunner{states: []domain.QueryState{domain.QueryCancelled}}
	_, err = service.NewQualityService(cancelled, "weather-db").CheckNulls(context.Background(), "parquet_tbl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CANCELLED")

	unreadable := &mockQueryRunner{scalarErr: errors.New("results expired")}
	_, err = service.NewQualityService(unreadable, "weather-db").CheckNulls(context.Background(), "parquet_tbl")
	assert.Error(t, err)

	garbage := &mockQueryRunner{scalar: strPtr("n/a")}
	_, err = service.NewQualityService(garbage, "weather-db").CheckNulls(context.Background(), "parquet_tbl")
	assert.Error(t, err)
}
