package generator

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/pkg/models"
)

// pingEvery matches the upstream feed, which interleaves keep-alive
// envelopes with trade batches.
const pingEvery = 50

// TradeGenerator publishes synthetic trade envelopes in the upstream feed's
// wire shape. Each message carries one symbol so the symbol key keeps
// per-symbol order within a partition.
type TradeGenerator struct {
	logger    *zap.Logger
	writer    KafkaWriter
	tickers   []string
	prices    map[string]float64
	rand      Rand
	clock     Clock
	interval  time.Duration
	batchSize int
	sent      int
}

func NewTradeGenerator(
	logger *zap.Logger,
	writer KafkaWriter,
	tickers []string,
	basePrices map[string]float64,
	rnd Rand,
	clock Clock,
	interval time.Duration,
	batchSize int,
) *TradeGenerator {
	prices := make(map[string]float64, len(tickers))
	for _, sym := range tickers {
		p := basePrices[sym]
		if p <= 0 {
			p = 100
		}
		prices[sym] = p
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &TradeGenerator{
		logger:    logger,
		writer:    writer,
		tickers:   tickers,
		prices:    prices,
		rand:      rnd,
		clock:     clock,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (g *TradeGenerator) Run(ctx context.Context) {
	g.logger.Info("Generator Started", zap.Strings("tickers", g.tickers), zap.Int("batch_size", g.batchSize))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if len(g.tickers) == 0 {
				g.clock.Sleep(1 * time.Second)
				continue
			}

			symbol, env := g.next()
			payload, err := json.Marshal(env)
			if err != nil {
				g.logger.Error("JSON Marshal Error", zap.Error(err))
				continue
			}

			err = g.writer.WriteMessages(ctx, kafka.Message{
				Key:   []byte(symbol),
				Value: payload,
			})
			if err != nil {
				g.logger.Error("Kafka Write Error", zap.Error(err))
			} else {
				g.logger.Debug("Sent envelope", zap.String("symbol", symbol), zap.String("type", env.Type))
			}

			g.clock.Sleep(g.interval)
		}
	}
}

// next builds the following envelope and returns the partition key for it.
func (g *TradeGenerator) next() (string, models.FeedEnvelope) {
	g.sent++
	if g.sent%pingEvery == 0 {
		return "ping", models.FeedEnvelope{Type: "ping"}
	}

	symbol := g.tickers[g.rand.Intn(len(g.tickers))]
	ts := g.clock.Now().UnixMilli()

	trades := make([]models.TradeRecord, g.batchSize)
	for i := range trades {
		// Random walk of at most half a percent per trade.
		step := (g.rand.Float64()*2 - 1) * 0.005
		price := math.Max(0.01, g.prices[symbol]*(1+step))
		price = math.Round(price*100) / 100
		g.prices[symbol] = price

		trades[i] = models.TradeRecord{
			Symbol:    symbol,
			Price:     price,
			Timestamp: ts + int64(i),
			Volume:    float64(g.rand.Intn(500) + 1),
		}
	}
	return symbol, models.FeedEnvelope{Type: models.EnvelopeTrade, Data: trades}
}
