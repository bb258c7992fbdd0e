package feed_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/feed"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/metrics"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/quotestore"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/testutils"
)

func TestKafkaSource_FeedsIngestorInOrder(t *testing.T) {
	store := quotestore.New()
	ing := feed.NewIngestor(store, nil, nil, metrics.New(prometheus.NewRegistry()), zap.NewNop())

	reader := &testutils.MockKafkaReader{
		Messages: []kafka.Message{
			{Key: []byte("AAPL"), Value: []byte(`{"type":"trade","data":[{"s":"AAPL","p":150,"t":1000,"v":100}]}`)},
			{Key: []byte("AAPL"), Value: []byte(`garbage`)},
			{Key: []byte("AAPL"), Value: []byte(`{"type":"trade","data":[{"s":"AAPL","p":151.5,"t":1001,"v":50}]}`)},
		},
	}

	err := feed.NewKafkaSource(reader, ing, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	q, ok := store.Get("AAPL")
	require.True(t, ok)
	require.Equal(t, 151.5, q.Price)
	require.EqualValues(t, 1001, q.Timestamp)
	require.True(t, reader.Closed)
}

func TestKafkaSource_StopsOnClosedReader(t *testing.T) {
	store := quotestore.New()
	ing := feed.NewIngestor(store, nil, nil, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	reader := &testutils.MockKafkaReader{Closed: true}

	require.NoError(t, feed.NewKafkaSource(reader, ing, zap.NewNop()).Run(context.Background()))
	require.Zero(t, store.Len())
}
