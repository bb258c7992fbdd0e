package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/generator/internal/generator"
	"github.com/shubham-shewale/options-relay/pkg/config"
	"github.com/shubham-shewale/options-relay/pkg/watchlist"
)

const topicPartitions = 4

// The generator replays a synthetic trade feed onto Kafka so the relay can
// run without upstream credentials.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	entries, err := watchlist.Load(cfg.Feed.WatchlistFile)
	if err != nil {
		logger.Fatal("Failed to load watchlist", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := generator.RealClock{}
	creator := generator.NewTopicCreator(logger, &generator.RealKafkaDialer{Dialer: &kafka.Dialer{Timeout: 10 * time.Second}}, clock, topicPartitions)
	if err := creator.Create(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
		logger.Warn("Topic setup skipped", zap.Error(err))
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Kafka.Brokers...),
		Topic:    cfg.Kafka.Topic,
		Balancer: &kafka.Hash{}, // symbol key pins a symbol to one partition
		// Send batches to reduce network IO
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}

	gen := generator.NewTradeGenerator(
		logger,
		writer,
		watchlist.Symbols(entries),
		watchlist.BasePrices(entries),
		generator.NewRealRand(),
		clock,
		cfg.Generator.Interval,
		cfg.Generator.BatchSize,
	)
	gen.Run(ctx)

	logger.Info("Shutdown signal received")

	// Flush the async buffer before exit
	if err := writer.Close(); err != nil {
		logger.Error("Error closing Kafka writer", zap.Error(err))
	} else {
		logger.Info("Kafka writer closed cleanly")
	}
}
