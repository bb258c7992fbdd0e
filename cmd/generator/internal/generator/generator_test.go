package generator_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/generator/internal/generator"
	"github.com/shubham-shewale/options-relay/cmd/generator/internal/testutils"
	"github.com/shubham-shewale/options-relay/pkg/models"
)

func TestGenerator_Logic(t *testing.T) {
	logger := zap.NewNop()
	mockWriter := &testutils.MockKafkaWriter{}

	// Fix Randomness: Always pick Index 0 (AAPL), 0.5 means no price step
	mockRand := &testutils.MockRand{ValInt: 0, ValFloat: 0.5}

	// Fix Time: Start at Epoch
	mockClock := &testutils.MockClock{CurrentTime: time.Unix(0, 0)}

	tickers := []string{"AAPL"}
	basePrices := map[string]float64{"AAPL": 173.5}

	gen := generator.NewTradeGenerator(logger, mockWriter, tickers, basePrices, mockRand, mockClock, 100*time.Millisecond, 3)

	// Since MockClock.Sleep advances time instantly, we cancel quickly
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	gen.Run(ctx)

	mockWriter.Mu.Lock()
	defer mockWriter.Mu.Unlock()

	if len(mockWriter.Messages) == 0 {
		t.Fatal("Expected messages to be generated")
	}

	first := mockWriter.Messages[0]
	if string(first.Key) != "AAPL" {
		t.Errorf("Expected key AAPL, got %s", first.Key)
	}

	var env models.FeedEnvelope
	if err := json.Unmarshal(first.Value, &env); err != nil {
		t.Fatalf("Generated invalid JSON: %v", err)
	}
	if env.Type != models.EnvelopeTrade {
		t.Fatalf("Expected trade envelope, got %s", env.Type)
	}
	if len(env.Data) != 3 {
		t.Fatalf("Expected batch of 3, got %d", len(env.Data))
	}
	for i, rec := range env.Data {
		if rec.Symbol != "AAPL" {
			t.Errorf("Expected AAPL, got %s", rec.Symbol)
		}
		// (0.5 * 2) - 1 = 0 step, so price stays at base
		if rec.Price != 173.5 {
			t.Errorf("Expected Price 173.5, got %f", rec.Price)
		}
		if rec.Timestamp != int64(i) {
			t.Errorf("Expected timestamp %d, got %d", i, rec.Timestamp)
		}
		if rec.Volume != 1 {
			t.Errorf("Expected volume 1, got %f", rec.Volume)
		}
	}

	// Second message was generated one interval later.
	if len(mockWriter.Messages) > 1 {
		var second models.FeedEnvelope
		json.Unmarshal(mockWriter.Messages[1].Value, &second)
		if second.Data[0].Timestamp != 100 {
			t.Errorf("Expected timestamp 100, got %d", second.Data[0].Timestamp)
		}
	}
}

func TestGenerator_InterleavesPing(t *testing.T) {
	mockWriter := &testutils.MockKafkaWriter{}
	mockRand := &testutils.MockRand{ValInt: 0, ValFloat: 1}
	mockClock := &testutils.MockClock{CurrentTime: time.Unix(0, 0)}

	gen := generator.NewTradeGenerator(zap.NewNop(), mockWriter, []string{"TSLA"}, nil, mockRand, mockClock, time.Millisecond, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	gen.Run(ctx)

	mockWriter.Mu.Lock()
	defer mockWriter.Mu.Unlock()
	if len(mockWriter.Messages) < 50 {
		t.Skipf("only %d messages generated", len(mockWriter.Messages))
	}

	var ping models.FeedEnvelope
	json.Unmarshal(mockWriter.Messages[49].Value, &ping)
	if ping.Type != "ping" || len(ping.Data) != 0 {
		t.Errorf("Expected 50th envelope to be a ping, got %+v", ping)
	}

	// Unknown base price starts at 100 and steps up by half a percent.
	var firstTrade models.FeedEnvelope
	json.Unmarshal(mockWriter.Messages[0].Value, &firstTrade)
	if firstTrade.Data[0].Price != 100.5 {
		t.Errorf("Expected 100.5, got %f", firstTrade.Data[0].Price)
	}
}

func TestGenerator_WriteErrorKeepsRunning(t *testing.T) {
	mockWriter := &testutils.MockKafkaWriter{ShouldFail: true}
	mockClock := &testutils.MockClock{CurrentTime: time.Unix(0, 0)}

	gen := generator.NewTradeGenerator(zap.NewNop(), mockWriter, []string{"AAPL"}, nil, &testutils.MockRand{}, mockClock, time.Second, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	gen.Run(ctx)

	if mockClock.Now().Before(time.Unix(1, 0)) {
		t.Error("Generator should keep looping after write failures")
	}
}

func TestTopicCreator_Flow(t *testing.T) {
	logger := zap.NewNop()
	mockDialer := &testutils.MockKafkaDialer{} // Will auto-create ConnSpy
	mockClock := &testutils.MockClock{}

	tc := generator.NewTopicCreator(logger, mockDialer, mockClock, 4)

	if err := tc.Create(context.Background(), []string{"broker:9092"}, "market_trades"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if mockDialer.ConnSpy == nil {
		t.Fatal("Dialer was never called")
	}

	if len(mockDialer.ConnSpy.CreatedTopics) == 0 {
		t.Fatal("No topics created")
	}

	if mockDialer.ConnSpy.CreatedTopics[0] != "market_trades" {
		t.Errorf("Expected topic 'market_trades', got %s", mockDialer.ConnSpy.CreatedTopics[0])
	}
}

func TestTopicCreator_NoBrokerReachable(t *testing.T) {
	mockDialer := &testutils.MockKafkaDialer{Err: errors.New("connection refused")}

	tc := generator.NewTopicCreator(zap.NewNop(), mockDialer, &testutils.MockClock{}, 4)

	err := tc.Create(context.Background(), []string{"a:9092", "b:9092"}, "market_trades")
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Expected dial error, got %v", err)
	}
	if mockDialer.Dials != 2 {
		t.Errorf("Expected every broker to be tried, got %d dials", mockDialer.Dials)
	}
}
