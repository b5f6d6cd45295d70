package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zzenonn/weatherpipe/internal/domain"
	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
	"github.com/zzenonn/weatherpipe/internal/repository/objectstore"
)

const (
	extractionTimeLayout = "2006-01-02 15:04:05"
	sampleSize           = 5
	jsonContentType      = "application/json"
)

var fileStampReplacer = strings.NewReplacer(" ", "_", ":", "-")

type CatalogRepository interface {
	GetTable(ctx context.Context, database, table string) (domain.TableDescriptor, error)
}

// ArtifactWriter writes objects to the metadata results bucket.
type ArtifactWriter interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	URI(key string) string
}

type ExtractionLedger interface {
	CreateExtraction(ctx context.Context, entry domain.ExtractionEntry) (domain.ExtractionEntry, error)
}

// MetadataRequest names the table to describe and where its data lives when
// the catalog cannot say.
type MetadataRequest struct {
	Database        string
	Table           string
	DefaultLocation string
}

// MetadataService assembles and persists table metadata.
type MetadataService struct {
	catalog    CatalogRepository
	discoverer *PartitionDiscoverer
	writer     ArtifactWriter
	ledger     ExtractionLedger
	now        func() time.Time
}

// MetadataOption configures a MetadataService.
type MetadataOption func(*MetadataService)

// WithLedger records every successful extraction in ledger.
func WithLedger(ledger ExtractionLedger) MetadataOption {
	return func(s *MetadataService) {
		s.ledger = ledger
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MetadataOption {
	return func(s *MetadataService) {
		s.now = now
	}
}

// WithProbeConcurrency bounds the number of partition probes in flight.
func WithProbeConcurrency(n int) MetadataOption {
	return func(s *MetadataService) {
		if n > 0 {
			s.discoverer.concurrency = n
		}
	}
}

// WithListMaxItems caps the number of objects returned by each listing.
func WithListMaxItems(n int) MetadataOption {
	return func(s *MetadataService) {
		if n > 0 {
			s.discoverer.maxItems = n
		}
	}
}

// WithProbeObserver is called once per partition probe. Calls are serialized.
func WithProbeObserver(observer func(ProbeResult)) MetadataOption {
	return func(s *MetadataService) {
		s.discoverer.observer = observer
	}
}

// NewMetadataService creates a new MetadataService instance
func NewMetadataService(catalog CatalogRepository, lister ObjectLister, writer ArtifactWriter, opts ...MetadataOption) *MetadataService {
	s := &MetadataService{
		catalog:    catalog,
		discoverer: NewPartitionDiscoverer(lister),
		writer:     writer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProbeCount is the number of partition probes issued per extraction.
func (s *MetadataService) ProbeCount() int {
	return len(PartitionCandidates("", s.now()))
}

// Extract describes req.Table and writes the flattened record, manifest and
// detailed record. It never returns an error: failures become a 500 response.
func (s *MetadataService) Extract(ctx context.Context, req MetadataRequest) (resp domain.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Error processing weather data metadata: %v", r)
			resp = newResponse(http.StatusInternalServerError, domain.ResponseBody{
				Message: fmt.Sprintf("Error: %v", r),
			})
		}
	}()

	body, err := s.extract(ctx, req)
	if err != nil {
		log.Errorf("Error processing weather data metadata: %v", err)
		return newResponse(http.StatusInternalServerError, domain.ResponseBody{
			Message: fmt.Sprintf("Error: %v", err),
		})
	}
	return newResponse(http.StatusOK, body)
}

func (s *MetadataService) extract(ctx context.Context, req MetadataRequest) (domain.ResponseBody, error) {
	if req.Database == "" || req.Table == "" {
		return domain.ResponseBody{}, fmt.Errorf("%w: database and table", apperrors.ErrMissingRequiredFields)
	}

	now := s.now()
	currentTime := now.Format(extractionTimeLayout)

	table := s.resolveTable(ctx, req)

	var objects []domain.ObjectRecord
	if bucket, prefix, err := objectstore.ParseS3Location(table.Location); err != nil {
		log.Warnf("Could not parse S3 location: %s", table.Location)
	} else {
		log.Infof("Parsed S3 location - Bucket: %s, Prefix: %s", bucket, prefix)
		objects = s.discoverer.Discover(ctx, bucket, prefix, now)
	}

	summary, latest := Aggregate(objects)
	if summary.ObjectsCount > 0 {
		log.Infof("Updated metadata with %d objects", summary.ObjectsCount)
	} else {
		log.Warn("No S3 objects found")
	}

	flat := domain.FlatRecord{
		TableName:            req.Table,
		SourceDatabase:       req.Database,
		ExtractionTime:       currentTime,
		ColumnCount:          len(table.Columns),
		S3Location:           table.Location,
		S3ObjectsCount:       summary.ObjectsCount,
		S3TotalSizeBytes:     summary.TotalSizeBytes,
		S3LatestModification: latest,
	}

	fileStamp := fileStampReplacer.Replace(currentTime)
	metadataFolder := fmt.Sprintf("weather_metadata_flat/%s/date=%s/", req.Table, now.Format("2006-01-02"))
	flatKey := metadataFolder + fileStamp + ".json"
	manifestKey := fmt.Sprintf("weather_metadata_manifests/%s/manifest.json", req.Table)
	detailedKey := fmt.Sprintf("weather_metadata_detailed/%s/%s.json", req.Table, fileStamp)

	// Folder placeholder for consoles that browse the flat namespace.
	if _, err := s.writer.Upload(ctx, metadataFolder, bytes.NewReader(nil), ""); err != nil {
		return domain.ResponseBody{}, saveError(err)
	}

	flatURI, err := s.putJSON(ctx, flatKey, flat)
	if err != nil {
		return domain.ResponseBody{}, saveError(err)
	}
	log.Infof("Saved flattened metadata to S3: %s", flatURI)

	manifestURI, err := s.putJSON(ctx, manifestKey, domain.ManifestPointer{
		LatestMetadata: flatURI,
		LastUpdated:    currentTime,
		TableName:      req.Table,
	})
	if err != nil {
		return domain.ResponseBody{}, saveError(err)
	}

	sample := make([]domain.ObjectRecord, 0, sampleSize)
	sample = append(sample, objects[:min(sampleSize, len(objects))]...)
	detailedURI, err := s.putJSON(ctx, detailedKey, domain.DetailedRecord{
		TableName:            flat.TableName,
		SourceDatabase:       flat.SourceDatabase,
		ExtractionTime:       flat.ExtractionTime,
		ColumnCount:          flat.ColumnCount,
		Columns:              table.Columns,
		PartitionKeys:        table.PartitionKeys,
		S3Location:           flat.S3Location,
		S3ObjectsCount:       flat.S3ObjectsCount,
		S3TotalSizeBytes:     flat.S3TotalSizeBytes,
		S3LatestModification: flat.S3LatestModification,
		S3ObjectsSample:      sample,
	})
	if err != nil {
		return domain.ResponseBody{}, saveError(err)
	}
	log.Infof("Saved detailed metadata to S3: %s", detailedURI)

	s.recordExtraction(ctx, domain.ExtractionEntry{
		TableName:                 req.Table,
		ExtractionTime:            currentTime,
		SourceDatabase:            req.Database,
		S3Location:                table.Location,
		FlattenedMetadataLocation: flatURI,
		DetailedMetadataLocation:  detailedURI,
		ObjectsCount:              summary.ObjectsCount,
		TotalSizeBytes:            summary.TotalSizeBytes,
	})

	return domain.ResponseBody{
		Message:                   "Successfully saved weather data metadata",
		FlattenedMetadataLocation: flatURI,
		DetailedMetadataLocation:  detailedURI,
		ManifestLocation:          manifestURI,
		MetadataSummary:           &summary,
		CrawlerInstructions: fmt.Sprintf(
			"To create a table from the flattened metadata, run a Glue crawler with:\nTarget path: %s\nExclude patterns: **/manifest.json",
			s.writer.URI("weather_metadata_flat/"),
		),
	}, nil
}

// resolveTable looks the table up in the catalog, falling back to the default
// location and the built-in weather schema.
func (s *MetadataService) resolveTable(ctx context.Context, req MetadataRequest) domain.TableDescriptor {
	table := domain.TableDescriptor{
		Database: req.Database,
		Table:    req.Table,
		Location: req.DefaultLocation,
	}

	found, err := s.catalog.GetTable(ctx, req.Database, req.Table)
	if err != nil {
		log.Warnf("Could not retrieve table information from Glue: %v", err)
	} else {
		table.Location = objectstore.NormalizeLocation(found.Location)
		table.Columns = found.Columns
		table.PartitionKeys = found.PartitionKeys
		log.Infof("Using S3 location from Glue: %s", table.Location)
	}

	if len(table.Columns) == 0 {
		table.Columns = domain.DefaultWeatherColumns()
		table.PartitionKeys = domain.DefaultWeatherPartitionKeys()
	}
	if table.PartitionKeys == nil {
		table.PartitionKeys = []domain.PartitionKey{}
	}

	return table
}

func (s *MetadataService) putJSON(ctx context.Context, key string, v any) (string, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.writer.Upload(ctx, key, bytes.NewReader(body), jsonContentType)
}

func (s *MetadataService) recordExtraction(ctx context.Context, entry domain.ExtractionEntry) {
	if s.ledger == nil {
		return
	}
	if _, err := s.ledger.CreateExtraction(ctx, entry); err != nil {
		log.Warnf("Could not record extraction of %s in ledger: %v", entry.TableName, err)
	}
}

func saveError(err error) error {
	log.Errorf("Could not save metadata to S3: %v", err)
	return fmt.Errorf("could not save metadata: %w", err)
}

func newResponse(status int, body domain.ResponseBody) domain.Response {
	encoded, err := json.Marshal(body)
	if err != nil {
		return domain.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"message": "Error: could not encode response"}`,
		}
	}
	return domain.Response{StatusCode: status, Body: string(encoded)}
}
