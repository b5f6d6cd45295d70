package domain

// FlatRecord - scalar-only metadata summary, queryable by row-oriented engines
type FlatRecord struct {
	TableName            string  `json:"table_name"`
	SourceDatabase       string  `json:"source_database"`
	ExtractionTime       string  `json:"extraction_time"`
	ColumnCount          int     `json:"column_count"`
	S3Location           string  `json:"s3_location"`
	S3ObjectsCount       int     `json:"s3_objects_count"`
	S3TotalSizeBytes     int64   `json:"s3_total_size_bytes"`
	S3LatestModification *string `json:"s3_latest_modification"`
}

// DetailedRecord - FlatRecord plus schema and a sample of listed objects
type DetailedRecord struct {
	TableName            string         `json:"table_name"`
	SourceDatabase       string         `json:"source_database"`
	ExtractionTime       string         `json:"extraction_time"`
	ColumnCount          int            `json:"column_count"`
	Columns              []Column       `json:"columns"`
	PartitionKeys        []PartitionKey `json:"partition_keys"`
	S3Location           string         `json:"s3_location"`
	S3ObjectsCount       int            `json:"s3_objects_count"`
	S3TotalSizeBytes     int64          `json:"s3_total_size_bytes"`
	S3LatestModification *string        `json:"s3_latest_modification"`
	S3ObjectsSample      []ObjectRecord `json:"s3_objects_sample"`
}

// ManifestPointer - fixed-location pointer to the latest flat record of a table
type ManifestPointer struct {
	LatestMetadata string `json:"latest_metadata"`
	LastUpdated    string `json:"last_updated"`
	TableName      string `json:"table_name"`
}

// MetadataSummary - numeric summary returned to the caller
type MetadataSummary struct {
	ObjectsCount   int   `json:"objects_count"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

// ResponseBody is JSON encoded into Response.Body.
type ResponseBody struct {
	Message                   string           `json:"message"`
	FlattenedMetadataLocation string           `json:"flattened_metadata_location,omitempty"`
	DetailedMetadataLocation  string           `json:"detailed_metadata_location,omitempty"`
	ManifestLocation          string           `json:"manifest_location,omitempty"`
	MetadataSummary           *MetadataSummary `json:"metadata_summary,omitempty"`
	CrawlerInstructions       string           `json:"crawler_instructions,omitempty"`
}

// Response - outcome of a metadata extraction in function-runtime shape
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// ExtractionEntry - one row of the extraction ledger
type ExtractionEntry struct {
	TableName                 string `json:"table_name" dynamodbav:"table_name"`           // Partition Key
	ExtractionTime            string `json:"extraction_time" dynamodbav:"extraction_time"` // Sort Key
	SourceDatabase            string `json:"source_database" dynamodbav:"source_database"`
	S3Location                string `json:"s3_location" dynamodbav:"s3_location"`
	FlattenedMetadataLocation string `json:"flattened_metadata_location" dynamodbav:"flattened_metadata_location"`
	DetailedMetadataLocation  string `json:"detailed_metadata_location" dynamodbav:"detailed_metadata_location"`
	ObjectsCount              int    `json:"objects_count" dynamodbav:"objects_count"`
	TotalSizeBytes            int64  `json:"total_size_bytes" dynamodbav:"total_size_bytes"`
}
