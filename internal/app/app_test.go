package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/weatherpipe/internal/app"
	"github.com/zzenonn/weatherpipe/internal/config"
	apperrors "github.com/zzenonn/weatherpipe/internal/errors"
)

func TestNewLedgerRequiresTable(t *testing.T) {
	_, err := app.NewLedger(&config.Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingRequiredFields)
	assert.Contains(t, err.Error(), "ledger_table")
}

func TestMetadataRequest(t *testing.T) {
	cfg := &config.Config{Database: "weather-db", MetadataTable: "weather_tbl", DataBucket: "data"}

	req := app.MetadataRequest(cfg)
	assert.Equal(t, "weather-db", req.Database)
	assert.Equal(t, "weather_tbl", req.Table)
	assert.Equal(t, "s3://data/weather_tbl/", req.DefaultLocation)
}

func TestNewMetadataServiceRejectsBadResultsBucket(t *testing.T) {
	_, err := app.NewMetadataService(&config.Config{MetadataResults: "s3://results/prefix"})
	assert.ErrorContains(t, err, "metadata_results")
}

func TestForecastRequest(t *testing.T) {
	cfg := &config.Config{Forecast: config.ForecastConfig{
		Latitude:        40.7143,
		Longitude:       -74.006,
		StartDate:       "2025-01-01",
		EndDate:         "2025-04-16",
		Timezone:        "America/New_York",
		TemperatureUnit: "fahrenheit",
	}}

	req := app.ForecastRequest(cfg)
	assert.Equal(t, 40.7143, req.Latitude)
	assert.Equal(t, "2025-04-16", req.EndDate)
	assert.Equal(t, "fahrenheit", req.TemperatureUnit)
}
