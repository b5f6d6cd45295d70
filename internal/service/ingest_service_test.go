package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/weatherpipe/internal/domain"
	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
	"github.com/zzenonn/weatherpipe/internal/repository/openmeteo"
	"github.com/zzenonn/weatherpipe/internal/service"
)

type mockForecast struct {
	resp openmeteo.ForecastResponse
	err  error
	reqs []openmeteo.ForecastRequest
}

func (m *mockForecast) DailyMaxTemperature(ctx context.Context, req openmeteo.ForecastRequest) (openmeteo.ForecastResponse, error) {
	m.reqs = append(m.reqs, req)
	return m.resp, m.err
}

// mockStream chunks like the Firehose repository and rejects a fixed number of records.
type mockStream struct {
	rejected int
	err      error
	records  [][]byte
}

func (m *mockStream) PutRecords(ctx context.Context, records [][]byte) (int, int, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	m.records = append(m.records, records...)
	batches := (len(records) + 499) / 500
	return batches, m.rejected, nil
}

func floatPtr(f float64) *float64 {
	return &f
}

func forecastDays(n int) openmeteo.ForecastResponse {
	resp := openmeteo.ForecastResponse{Latitude: 40.710335, Longitude: -73.99307}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		resp.Daily.Time = append(resp.Daily.Time, start.AddDate(0, 0, i).Format("2006-01-02"))
		resp.Daily.Temperature2mMax = append(resp.Daily.Temperature2mMax, floatPtr(float64(30+i%10)))
	}
	return resp
}

func TestWeatherRecords_ZeroFillsMissingTemperatures(t *testing.T) {
	resp := openmeteo.ForecastResponse{
		Latitude:  40.71,
		Longitude: -74.0,
		Daily: openmeteo.DailyForecast{
			Time:             []string{"2025-01-01", "2025-01-02", "2025-01-03"},
			Temperature2mMax: []*float64{floatPtr(41.5), nil},
		},
	}
	rowTS := time.Date(2025, 4, 16, 10, 0, 0, 123456000, time.UTC)

	records := service.WeatherRecords(resp, rowTS)
	require.Len(t, records, 3)
	assert.Equal(t, 41.5, records[0].Temp)
	assert.Equal(t, 0.0, records[1].Temp)
	assert.Equal(t, 0.0, records[2].Temp)
	for _, rec := range records {
		assert.Equal(t, "2025-04-16 10:00:00.123456", rec.RowTS)
		assert.Equal(t, 40.71, rec.Latitude)
		assert.Equal(t, -74.0, rec.Longitude)
	}
}

func TestIngestService_Ingest(t *testing.T) {
	forecast := &mockForecast{resp: forecastDays(3)}
	stream := &mockStream{}
	svc := service.NewIngestService(forecast, stream)
	svc.SetClock(func() time.Time { return time.Date(2025, 4, 16, 10, 0, 0, 0, time.UTC) })

	req := openmeteo.ForecastRequest{Latitude: 40.7143, Longitude: -74.006, StartDate: "2025-01-01", EndDate: "2025-01-03"}
	result, err := svc.Ingest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestResult{RecordsSent: 3, Batches: 1}, result)
	assert.Equal(t, []openmeteo.ForecastRequest{req}, forecast.reqs)

	require.Len(t, stream.records, 3)
	for i, raw := range stream.records {
		require.True(t, strings.HasSuffix(string(raw), "\n"))
		var rec domain.WeatherRecord
		require.NoError(t, json.Unmarshal(raw, &rec))
		assert.Equal(t, fmt.Sprintf("2025-01-0%d", i+1), rec.Time)
		assert.Equal(t, "2025-04-16 10:00:00.000000", rec.RowTS)
	}
}

func TestIngestService_LargeForecast(t *testing.T) {
	stream := &mockStream{rejected: 2}
	svc := service.NewIngestService(&mockForecast{resp: forecastDays(1201)}, stream)

	result, err := svc.Ingest(context.Background(), openmeteo.ForecastRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1201, result.RecordsSent)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, 2, result.FailedPutCount)
}

func TestIngestService_Errors(t *testing.T) {
	_, err := service.NewIngestService(&mockForecast{err: errors.New("status 502")}, &mockStream{}).
		Ingest(context.Background(), openmeteo.ForecastRequest{})
	assert.ErrorContains(t, err, "502")

	_, err = service.NewIngestService(&mockForecast{}, &mockStream{}).
		Ingest(context.Background(), openmeteo.ForecastRequest{})
	assert.ErrorIs(t, err, apperrors.ErrEmptyForecast)

	_, err = service.NewIngestService(&mockForecast{resp: forecastDays(2)}, &mockStream{err: errors.New("stream not found")}).
		Ingest(context.Background(), openmeteo.ForecastRequest{})
	assert.ErrorContains(t, err, "stream not found")
}
