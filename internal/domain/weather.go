package domain

// WeatherRecord - one daily reading delivered to the raw weather stream
type WeatherRecord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Time      string  `json:"time"`
	Temp      float64 `json:"temp"`
	RowTS     string  `json:"row_ts"`
}

// IngestResult - outcome of a batch delivery
type IngestResult struct {
	RecordsSent    int
	FailedPutCount int
	Batches        int
}
