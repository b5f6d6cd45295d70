// Package openmeteo fetches daily forecasts from the Open-Meteo API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ForecastRequest selects the location, range and units of a daily forecast.
type ForecastRequest struct {
	Latitude        float64
	Longitude       float64
	StartDate       string // YYYY-MM-DD
	EndDate         string
	Timezone        string
	TemperatureUnit string
}

// DailyForecast holds parallel arrays indexed by day. Missing readings are nil.
type DailyForecast struct {
	Time             []string   `json:"time"`
	Temperature2mMax []*float64 `json:"temperature_2m_max"`
}

// ForecastResponse is the subset of the Open-Meteo response used by the pipeline.
type ForecastResponse struct {
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Daily     DailyForecast `json:"daily"`
}

// ForecastClient calls the forecast endpoint.
type ForecastClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewForecastClient creates a client for baseURL, e.g. https://api.open-meteo.com/v1/forecast.
func NewForecastClient(baseURL string, httpClient *http.Client) *ForecastClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ForecastClient{baseURL: baseURL, httpClient: httpClient}
}

// DailyMaxTemperature fetches temperature_2m_max for every day of req.
func (c *ForecastClient) DailyMaxTemperature(ctx context.Context, req ForecastRequest) (ForecastResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ForecastResponse{}, fmt.Errorf("invalid forecast url %q: %w", c.baseURL, err)
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	q.Set("daily", "temperature_2m_max")
	q.Set("temperature_unit", req.TemperatureUnit)
	q.Set("timezone", req.Timezone)
	q.Set("start_date", req.StartDate)
	q.Set("end_date", req.EndDate)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return ForecastResponse{}, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ForecastResponse{}, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ForecastResponse{}, fmt.Errorf("forecast request failed with status %d: %s", resp.StatusCode, body)
	}

	var forecast ForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return ForecastResponse{}, fmt.Errorf("failed to decode forecast: %w", err)
	}
	return forecast, nil
}
