package domain

// PartitionLayout - how a partition value is laid out under the table prefix
type PartitionLayout string

const (
	// LayoutKeyValue is the Hive style yr_mo_partition=2025_04/ layout.
	LayoutKeyValue PartitionLayout = "key_value"
	// LayoutBare is the bare 2025_04/ layout.
	LayoutBare PartitionLayout = "bare"
)

// PartitionColumn is the column the weather tables are partitioned by.
const PartitionColumn = "yr_mo_partition"

// PartitionCandidate - a guessed prefix under which partitioned data may live
type PartitionCandidate struct {
	Token  string // YYYY_MM
	Layout PartitionLayout
	Prefix string
}
