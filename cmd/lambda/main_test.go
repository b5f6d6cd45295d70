package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/weatherpipe/internal/config"
	"github.com/zzenonn/weatherpipe/internal/domain"
	"github.com/zzenonn/weatherpipe/internal/service"
)

type stubCatalog struct{ tables []string }

func (c *stubCatalog) GetTable(ctx context.Context, database, table string) (domain.TableDescriptor, error) {
	c.tables = append(c.tables, database+"."+table)
	return domain.TableDescriptor{}, errors.New("EntityNotFoundException")
}

type stubLister struct{ buckets []string }

func (l *stubLister) ListObjects(ctx context.Context, bucket, prefix string, maxItems int) ([]domain.ObjectRecord, error) {
	l.buckets = append(l.buckets, bucket+"/"+prefix)
	return nil, nil
}

type stubWriter struct{ keys []string }

func (w *stubWriter) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	w.keys = append(w.keys, key)
	return w.URI(key), nil
}

func (w *stubWriter) URI(key string) string {
	return "s3://results/" + key
}

func newTestHandler() (*handler, *stubCatalog, *stubLister) {
	cfg := &config.Config{
		Database:      "weather-db",
		MetadataTable: "weather_tbl",
		DataBucket:    "data",
	}
	catalog := &stubCatalog{}
	lister := &stubLister{}
	metadata := service.NewMetadataService(catalog, lister, &stubWriter{},
		service.WithClock(func() time.Time { return time.Date(2025, 4, 17, 2, 58, 16, 0, time.UTC) }))
	return &handler{cfg: cfg, metadata: metadata}, catalog, lister
}

func TestHandlerUsesConfiguredTable(t *testing.T) {
	h, catalog, lister := newTestHandler()

	resp, err := h.handle(context.Background(), Event{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"weather-db.weather_tbl"}, catalog.tables)
	require.NotEmpty(t, lister.buckets)
	assert.Equal(t, "data/weather_tbl/", lister.buckets[0])

	var body domain.ResponseBody
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "Successfully saved weather data metadata", body.Message)
}

func TestHandlerEventOverrides(t *testing.T) {
	h, catalog, lister := newTestHandler()

	resp, err := h.handle(context.Background(), Event{Database: "other-db", TableName: "other_tbl"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"other-db.other_tbl"}, catalog.tables)
	assert.Equal(t, "data/other_tbl/", lister.buckets[0])
}
