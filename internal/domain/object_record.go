package domain

import (
	"encoding/json"
	"time"
)

// TimestampLayout matches the ISO-8601 rendering used in persisted metadata.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// ObjectRecord - one listed storage object
type ObjectRecord struct {
	Key          string
	Size         int64
	LastModified *time.Time
	StorageClass string
	ETag         string
}

type objectRecordJSON struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified"`
	StorageClass string  `json:"storage_class"`
	ETag         string  `json:"etag"`
}

// MarshalJSON renders LastModified with TimestampLayout.
func (o ObjectRecord) MarshalJSON() ([]byte, error) {
	out := objectRecordJSON{
		Key:          o.Key,
		Size:         o.Size,
		StorageClass: o.StorageClass,
		ETag:         o.ETag,
	}
	if o.LastModified != nil {
		ts := o.LastModified.Format(TimestampLayout)
		out.LastModified = &ts
	}
	return json.Marshal(out)
}
