// Package stream delivers records to Kinesis Data Firehose.
package stream

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/aws/aws-sdk-go-v2/service/firehose/types"
	log "github.com/sirupsen/logrus"
)

// MaxBatchRecords is the PutRecordBatch per-call record limit.
const MaxBatchRecords = 500

// FirehoseAPI is the subset of *firehose.Client used by FirehoseDeliveryRepository.
type FirehoseAPI interface {
	PutRecordBatch(ctx context.Context, params *firehose.PutRecordBatchInput, optFns ...func(*firehose.Options)) (*firehose.PutRecordBatchOutput, error)
}

// FirehoseDeliveryRepository writes to a single delivery stream.
type FirehoseDeliveryRepository struct {
	client     FirehoseAPI
	streamName string
}

// NewFirehoseDeliveryRepository initializes a new FirehoseDeliveryRepository.
func NewFirehoseDeliveryRepository(client FirehoseAPI, streamName string) FirehoseDeliveryRepository {
	return FirehoseDeliveryRepository{
		client:     client,
		streamName: streamName,
	}
}

// PutRecords sends records in batches of at most MaxBatchRecords and returns
// the number of batches and the total FailedPutCount. The first call error
// stops delivery.
func (r *FirehoseDeliveryRepository) PutRecords(ctx context.Context, records [][]byte) (batches int, failed int, err error) {
	for start := 0; start < len(records); start += MaxBatchRecords {
		end := min(start+MaxBatchRecords, len(records))

		batch := make([]types.Record, 0, end-start)
		for _, data := range records[start:end] {
			batch = append(batch, types.Record{Data: data})
		}

		out, err := r.client.PutRecordBatch(ctx, &firehose.PutRecordBatchInput{
			DeliveryStreamName: aws.String(r.streamName),
			Records:            batch,
		})
		if err != nil {
			return batches, failed, fmt.Errorf("failed to put record batch to %s: %w", r.streamName, err)
		}

		batches++
		failed += int(aws.ToInt32(out.FailedPutCount))
		log.Debugf("Delivered batch %d (%d records) to %s", batches, len(batch), r.streamName)
	}

	return batches, failed, nil
}
