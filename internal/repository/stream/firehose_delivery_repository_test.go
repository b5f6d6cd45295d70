package stream_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zzenonn/weatherpipe/internal/repository/stream"
)

type mockFirehoseClient struct {
	batchSizes []int
	failed     int32
	err        error
}

func (m *mockFirehoseClient) PutRecordBatch(ctx context.Context, params *firehose.PutRecordBatchInput, optFns ...func(*firehose.Options)) (*firehose.PutRecordBatchOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.batchSizes = append(m.batchSizes, len(params.Records))
	return &firehose.PutRecordBatchOutput{FailedPutCount: aws.Int32(m.failed)}, nil
}

func records(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte("{}\n")
	}
	return out
}

func TestFirehoseDeliveryRepository_PutRecords(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		failed      int32
		wantBatches []int
		wantFailed  int
	}{
		{name: "no records", count: 0},
		{name: "single batch", count: 106, wantBatches: []int{106}},
		{name: "exact limit", count: 500, wantBatches: []int{500}},
		{name: "split batches", count: 1201, failed: 1, wantBatches: []int{500, 500, 201}, wantFailed: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockFirehoseClient{failed: tt.failed}
			repo := stream.NewFirehoseDeliveryRepository(client, "PUT-S3-test")

			batches, failed, err := repo.PutRecords(context.Background(), records(tt.count))
			require.NoError(t, err)
			assert.Equal(t, tt.wantBatches, client.batchSizes)
			assert.Equal(t, len(tt.wantBatches), batches)
			assert.Equal(t, tt.wantFailed, failed)
		})
	}
}

func TestFirehoseDeliveryRepository_Error(t *testing.T) {
	client := &mockFirehoseClient{err: errors.New("stream not found")}
	repo := stream.NewFirehoseDeliveryRepository(client, "missing")

	_, _, err := repo.PutRecords(context.Background(), records(3))
	assert.ErrorIs(t, err, client.err)
}
