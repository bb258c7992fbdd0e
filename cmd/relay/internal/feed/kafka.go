package feed

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/pkg/config"
)

// KafkaReader abstracts the input stream
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

func NewKafkaReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             cfg.Topic,
		GroupID:           cfg.GroupID,
		MinBytes:          200,
		MaxBytes:          10e6,
		MaxWait:           200 * time.Millisecond,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    10 * time.Second,
	})
}

// KafkaSource feeds envelopes written by the generator into the same
// ingestor as the websocket stream. Messages are handled one at a time so
// partition order is preserved per symbol.
type KafkaSource struct {
	reader  KafkaReader
	handler FrameHandler
	logger  *zap.Logger
}

func NewKafkaSource(reader KafkaReader, handler FrameHandler, logger *zap.Logger) *KafkaSource {
	return &KafkaSource{reader: reader, handler: handler, logger: logger}
}

func (k *KafkaSource) Run(ctx context.Context) error {
	k.logger.Info("Kafka source started")
	defer func() {
		if err := k.reader.Close(); err != nil {
			k.logger.Error("Error closing reader", zap.Error(err))
		}
	}()

	for {
		m, err := k.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return nil
			}
			k.logger.Error("Kafka Read Error", zap.Error(err))
			continue
		}
		k.handler.Handle(m.Value)
	}
}
