package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zzenonn/weatherpipe/internal/domain"
)

// ProdSuffixLayout names the timestamped PROD table and its folder. Go only
// renders fractional seconds after a dot, so ProdSuffix swaps it afterwards.
const ProdSuffixLayout = "2006_01_02_15_04_05.000000"

// ProdSuffix renders t as e.g. 2025_04_17_02_58_16_622979.
func ProdSuffix(t time.Time) string {
	return strings.Replace(t.Format(ProdSuffixLayout), ".", "_", 1)
}

// QueryRunner runs Athena SQL to completion.
type QueryRunner interface {
	Run(ctx context.Context, sql, database string) (domain.QueryExecution, error)
	Scalar(ctx context.Context, id string) (*string, error)
}

// TableSettings names the tables and locations managed by TableService.
type TableSettings struct {
	Database            string
	SourceTable         string
	TransformedTable    string
	TransformedLocation string // s3://bucket/
	ProdTable           string
	ProdLocation        string // s3://bucket/
}

// TableService owns the lifecycle of the transformed and PROD tables.
type TableService struct {
	runner   QueryRunner
	settings TableSettings
	now      func() time.Time
}

func NewTableService(runner QueryRunner, settings TableSettings) *TableService {
	return &TableService{
		runner:   runner,
		settings: settings,
		now:      time.Now,
	}
}

// SetClock replaces time.Now.
func (s *TableService) SetClock(now func() time.Time) {
	s.now = now
}

// DropTransformedSQL drops the transformed table with a quoted database.
func DropTransformedSQL(database, table string) string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS "%s".%s`, database, table)
}

// DropTableSQL relies on the query's database context.
func DropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", table)
}

// CreateTransformedSQL converts the raw Fahrenheit readings into the
// partitioned Parquet table.
func CreateTransformedSQL(database, sourceTable, table, location string) string {
	return fmt.Sprintf(`CREATE TABLE "%s".%s WITH
(external_location='%s',
format='PARQUET',
write_compression='SNAPPY',
partitioned_by = ARRAY['%s'])
AS
SELECT DISTINCT
    latitude,
    longitude,
    temp AS temp_F,
    (temp - 32) * (5.0/9.0) AS temp_C,
    row_ts,
    time,
    SUBSTRING(time,1,7) AS %s
FROM "%s"."%s"`, database, table, location, domain.PartitionColumn, domain.PartitionColumn, database, sourceTable)
}

// PublishProdSQL copies table into a new PROD table.
func PublishProdSQL(database, table, prodTable, location string) string {
	return fmt.Sprintf(`CREATE TABLE %s WITH
(external_location='%s',
format='PARQUET',
write_compression='SNAPPY',
partitioned_by = ARRAY['%s'])
AS
SELECT
    *
FROM "%s"."%s"`, prodTable, location, domain.PartitionColumn, database, table)
}

// CreateTransformedTable drops the transformed table and recreates it from the
// source table. A failed drop is only logged.
func (s *TableService) CreateTransformedTable(ctx context.Context) (domain.QueryExecution, error) {
	drop := DropTransformedSQL(s.settings.Database, s.settings.TransformedTable)
	log.Infof("Dropping existing table if it exists: %s", s.settings.TransformedTable)
	if exec, err := s.runner.Run(ctx, drop, s.settings.Database); err != nil {
		log.Warnf("Error dropping table: %v", err)
	} else {
		log.Infof("Drop table status: %s", exec.State)
	}

	location := joinLocation(s.settings.TransformedLocation, "transformed_data")
	create := CreateTransformedSQL(s.settings.Database, s.settings.SourceTable, s.settings.TransformedTable, location)
	log.Infof("Creating table %s.%s at %s", s.settings.Database, s.settings.TransformedTable, location)

	exec, err := s.runner.Run(ctx, create, s.settings.Database)
	if err != nil {
		return exec, fmt.Errorf("failed to create table %s: %w", s.settings.TransformedTable, err)
	}
	if exec.State == domain.QuerySucceeded {
		log.Infof("Successfully created table %s.%s", s.settings.Database, s.settings.TransformedTable)
	}
	return exec, nil
}

// DropTable drops table from the catalog. Its objects stay in S3.
func (s *TableService) DropTable(ctx context.Context, table string) (domain.QueryExecution, error) {
	log.Infof("Dropping table %s from database %s (S3 objects are kept)", table, s.settings.Database)
	exec, err := s.runner.Run(ctx, DropTableSQL(table), s.settings.Database)
	if err != nil {
		return exec, fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	if exec.State == domain.QuerySucceeded {
		log.Infof("Successfully dropped table %s from database %s", table, s.settings.Database)
	}
	return exec, nil
}

// PublishProdTable snapshots the transformed table into a new timestamped
// PROD table and returns its name.
func (s *TableService) PublishProdTable(ctx context.Context) (string, domain.QueryExecution, error) {
	suffix := ProdSuffix(s.now())
	prodTable := fmt.Sprintf("%s_%s", s.settings.ProdTable, suffix)
	location := joinLocation(s.settings.ProdLocation, suffix)

	log.Infof("Publishing %s as %s at %s", s.settings.TransformedTable, prodTable, location)
	exec, err := s.runner.Run(ctx, PublishProdSQL(s.settings.Database, s.settings.TransformedTable, prodTable, location), s.settings.Database)
	if err != nil {
		return prodTable, exec, fmt.Errorf("failed to publish %s: %w", prodTable, err)
	}
	return prodTable, exec, nil
}

// joinLocation appends one folder to a bucket URI, ending with a slash.
func joinLocation(base, folder string) string {
	return strings.TrimRight(base, "/") + "/" + strings.Trim(folder, "/") + "/"
}
