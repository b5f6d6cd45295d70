package service

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/zzenonn/weatherpipe/internal/domain"
	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
)

// NullCheckSQL counts the rows of table with no Celsius reading.
func NullCheckSQL(database, table string) string {
	return fmt.Sprintf(`SELECT
    SUM(CASE WHEN temp_C IS NULL THEN 1 ELSE 0 END) AS res_col
FROM "%s"."%s"`, database, table)
}

type QualityService struct {
	runner   QueryRunner
	database string
}

func NewQualityService(runner QueryRunner, database string) *QualityService {
	return &QualityService{runner: runner, database: database}
}

// CheckNulls fails with ErrQualityCheckFailed when any temp_C value is NULL.
// An empty table passes.
func (s *QualityService) CheckNulls(ctx context.Context, table string) (int64, error) {
	log.Infof("Running data quality check on %s.%s", s.database, table)

	exec, err := s.runner.Run(ctx, NullCheckSQL(s.database, table), s.database)
	if err != nil {
		return 0, err
	}
	if exec.State != domain.QuerySucceeded {
		return 0, fmt.Errorf("quality check query %s ended %s", exec.ID, exec.State)
	}

	cell, err := s.runner.Scalar(ctx, exec.ID)
	if err != nil {
		return 0, err
	}

	var nulls int64
	if cell != nil && *cell != "" {
		nulls, err = strconv.ParseInt(*cell, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unexpected quality check result %q: %w", *cell, err)
		}
	}

	if nulls > 0 {
		return nulls, fmt.Errorf("%w: found %d NULL values in temp_C column", apperrors.ErrQualityCheckFailed, nulls)
	}

	log.Info("Quality check passed. No NULL values found in temp_C column.")
	return 0, nil
}
