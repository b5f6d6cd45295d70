package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zzenonn/weatherpipe/internal/domain"
	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
	"github.com/zzenonn/weatherpipe/internal/repository/openmeteo"
)

const rowTimestampLayout = "2006-01-02 15:04:05.000000"

type ForecastFetcher interface {
	DailyMaxTemperature(ctx context.Context, req openmeteo.ForecastRequest) (openmeteo.ForecastResponse, error)
}

// RecordDeliverer sends newline delimited records to a delivery stream.
type RecordDeliverer interface {
	PutRecords(ctx context.Context, records [][]byte) (batches int, failed int, err error)
}

type IngestService struct {
	forecast ForecastFetcher
	stream   RecordDeliverer
	now      func() time.Time
}

func NewIngestService(forecast ForecastFetcher, stream RecordDeliverer) *IngestService {
	return &IngestService{
		forecast: forecast,
		stream:   stream,
		now:      time.Now,
	}
}

// SetClock replaces time.Now.
func (s *IngestService) SetClock(now func() time.Time) {
	s.now = now
}

// WeatherRecords turns a forecast into one record per day. Missing
// temperatures become 0.0.
func WeatherRecords(resp openmeteo.ForecastResponse, rowTS time.Time) []domain.WeatherRecord {
	ts := rowTS.Format(rowTimestampLayout)
	records := make([]domain.WeatherRecord, 0, len(resp.Daily.Time))
	for i, day := range resp.Daily.Time {
		temp := 0.0
		if i < len(resp.Daily.Temperature2mMax) && resp.Daily.Temperature2mMax[i] != nil {
			temp = *resp.Daily.Temperature2mMax[i]
		}
		records = append(records, domain.WeatherRecord{
			Latitude:  resp.Latitude,
			Longitude: resp.Longitude,
			Time:      day,
			Temp:      temp,
			RowTS:     ts,
		})
	}
	return records
}

// Ingest fetches the forecast and delivers every day to the stream.
func (s *IngestService) Ingest(ctx context.Context, req openmeteo.ForecastRequest) (domain.IngestResult, error) {
	resp, err := s.forecast.DailyMaxTemperature(ctx, req)
	if err != nil {
		return domain.IngestResult{}, err
	}

	records := WeatherRecords(resp, s.now())
	if len(records) == 0 {
		return domain.IngestResult{}, apperrors.ErrEmptyForecast
	}

	payloads := make([][]byte, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return domain.IngestResult{}, fmt.Errorf("failed to encode record for %s: %w", rec.Time, err)
		}
		payloads = append(payloads, append(data, '\n'))
	}

	batches, failed, err := s.stream.PutRecords(ctx, payloads)
	result := domain.IngestResult{
		RecordsSent:    len(payloads),
		FailedPutCount: failed,
		Batches:        batches,
	}
	if err != nil {
		return result, err
	}

	if failed > 0 {
		log.Warnf("%d of %d records were rejected by the stream", failed, len(payloads))
	} else {
		log.Infof("Delivered %d records in %d batches", len(payloads), batches)
	}
	return result, nil
}
