package domain

// Column - a single column of a catalog table
type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	IsPartition bool   `json:"is_partition"`
}

// PartitionKey - a column the table is partitioned by
type PartitionKey struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableDescriptor - a catalog table and where its data lives
type TableDescriptor struct {
	Database      string
	Table         string
	Location      string // s3://bucket/prefix/
	Columns       []Column
	PartitionKeys []PartitionKey
}

// DefaultWeatherColumns is the schema of the transformed weather table, used
// whenever the catalog does not return one.
func DefaultWeatherColumns() []Column {
	return []Column{
		{Name: "latitude", Type: "double"},
		{Name: "longitude", Type: "double"},
		{Name: "temp_f", Type: "double"},
		{Name: "temp_c", Type: "double"},
		{Name: "row_ts", Type: "string"},
		{Name: "time", Type: "string"},
		{Name: "yr_mo_partition", Type: "string", IsPartition: true},
	}
}

// DefaultWeatherPartitionKeys returns the partition keys matching DefaultWeatherColumns.
func DefaultWeatherPartitionKeys() []PartitionKey {
	return []PartitionKey{{Name: "yr_mo_partition", Type: "string"}}
}
