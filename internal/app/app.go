// Package app builds services from the loaded configuration.
package app

import (
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/weatherpipe/internal/config"
	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
	"github.com/zzenonn/weatherpipe/internal/repository/catalog"
	"github.com/zzenonn/weatherpipe/internal/repository/db"
	"github.com/zzenonn/weatherpipe/internal/repository/objectstore"
	"github.com/zzenonn/weatherpipe/internal/repository/openmeteo"
	"github.com/zzenonn/weatherpipe/internal/repository/query"
	"github.com/zzenonn/weatherpipe/internal/repository/stream"
	"github.com/zzenonn/weatherpipe/internal/service"
)

// MetadataRequest describes the configured metadata table.
func MetadataRequest(cfg *config.Config) service.MetadataRequest {
	return service.MetadataRequest{
		Database:        cfg.Database,
		Table:           cfg.MetadataTable,
		DefaultLocation: cfg.DefaultMetadataLocation(),
	}
}

// NewMetadataService wires Glue, S3 listing, the results bucket writer and,
// when ledger_table is set, the DynamoDB ledger.
func NewMetadataService(cfg *config.Config, opts ...service.MetadataOption) (*service.MetadataService, error) {
	s3Store := objectstore.NewS3ObjectStore(cfg.AwsConfig)

	bucketConfig, err := objectstore.ParseBucketConfig(cfg.MetadataResults)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata_results %q: %w", cfg.MetadataResults, err)
	}
	writer, err := objectstore.NewObjectRepositoryFactory(s3Store.Client, cfg.GcsClient).CreateRepository(bucketConfig)
	if err != nil {
		return nil, err
	}

	glue := catalog.NewGlueCatalogRepositoryFromConfig(cfg.AwsConfig)

	base := []service.MetadataOption{
		service.WithProbeConcurrency(cfg.ProbeConcurrency),
		service.WithListMaxItems(cfg.ListMaxItems),
	}
	if cfg.LedgerTable != "" {
		ledger, err := NewLedger(cfg)
		if err != nil {
			return nil, err
		}
		base = append(base, service.WithLedger(ledger))
	}

	log.Debugf("Metadata artifacts go to %s bucket %s", writer.GetStorageType(), writer.GetBucketName())
	return service.NewMetadataService(&glue, s3Store, writer, append(base, opts...)...), nil
}

// NewLedger opens the extraction ledger table.
func NewLedger(cfg *config.Config) (*db.ExtractionRepository, error) {
	if cfg.LedgerTable == "" {
		return nil, apperrors.ConfigNotSetError("ledger_table")
	}
	dynamoDb, err := db.NewDatabase(cfg.AwsConfig)
	if err != nil {
		return nil, err
	}
	repo := db.NewExtractionRepository(dynamoDb.Client, cfg.LedgerTable)
	return &repo, nil
}

func newQueryRunner(cfg *config.Config) *query.AthenaQueryRepository {
	repo := query.NewAthenaQueryRepository(
		athena.NewFromConfig(cfg.AwsConfig),
		cfg.QueryResultsLocation(),
		cfg.QueryPollInterval,
		cfg.QueryMaxPolls,
	)
	return &repo
}

// NewTableService runs the table lifecycle statements on Athena.
func NewTableService(cfg *config.Config) *service.TableService {
	return service.NewTableService(newQueryRunner(cfg), service.TableSettings{
		Database:            cfg.Database,
		SourceTable:         cfg.SourceTable,
		TransformedTable:    cfg.TransformedTable,
		TransformedLocation: fmt.Sprintf("s3://%s/", cfg.DataBucket),
		ProdTable:           cfg.ProdTable,
		ProdLocation:        fmt.Sprintf("s3://%s/", cfg.ProdBucket),
	})
}

func NewQualityService(cfg *config.Config) *service.QualityService {
	return service.NewQualityService(newQueryRunner(cfg), cfg.Database)
}

// NewIngestService reads Open-Meteo and writes to the Firehose stream.
func NewIngestService(cfg *config.Config, httpClient *http.Client) *service.IngestService {
	delivery := stream.NewFirehoseDeliveryRepository(firehose.NewFromConfig(cfg.AwsConfig), cfg.FirehoseStream)
	return service.NewIngestService(openmeteo.NewForecastClient(cfg.Forecast.URL, httpClient), &delivery)
}

// ForecastRequest is the configured forecast query.
func ForecastRequest(cfg *config.Config) openmeteo.ForecastRequest {
	return openmeteo.ForecastRequest{
		Latitude:        cfg.Forecast.Latitude,
		Longitude:       cfg.Forecast.Longitude,
		StartDate:       cfg.Forecast.StartDate,
		EndDate:         cfg.Forecast.EndDate,
		Timezone:        cfg.Forecast.Timezone,
		TemperatureUnit: cfg.Forecast.TemperatureUnit,
	}
}
