package testutils

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/protocol"
	"github.com/shubham-shewale/options-relay/pkg/models"
)

// MockClient simulates a connected websocket transport
type MockClient struct {
	IDVal    string
	RawBytes []string
	Closed   bool
	Full     bool // when set, SendBytes reports a full buffer
	Mu       sync.Mutex
}

func NewMockClient(id string) *MockClient {
	return &MockClient{IDVal: id}
}

func (m *MockClient) ID() string { return m.IDVal }

func (m *MockClient) Close() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
}

func (m *MockClient) SendBytes(b []byte) bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.Full {
		return false
	}
	m.RawBytes = append(m.RawBytes, string(b))
	return true
}

func (m *MockClient) IsClosed() bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.Closed
}

// Events decodes every frame received so far.
func (m *MockClient) Events() []protocol.Envelope {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	out := make([]protocol.Envelope, 0, len(m.RawBytes))
	for _, raw := range m.RawBytes {
		var env protocol.Envelope
		if err := json.Unmarshal([]byte(raw), &env); err == nil {
			out = append(out, env)
		}
	}
	return out
}

// Count returns how many frames of the given event were received.
func (m *MockClient) Count(event string) int {
	n := 0
	for _, env := range m.Events() {
		if env.Event == event {
			n++
		}
	}
	return n
}

// MockEmitter records scheduled emissions without a transport.
type MockEmitter struct {
	IDVal   string
	Emitted []Emission
	Closed  bool
	Mu      sync.Mutex
}

type Emission struct {
	Event string
	Data  any
}

func (m *MockEmitter) ID() string { return m.IDVal }

func (m *MockEmitter) Emit(event string, v any) bool {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.Closed {
		return false
	}
	m.Emitted = append(m.Emitted, Emission{Event: event, Data: v})
	return true
}

func (m *MockEmitter) Events() []string {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	out := make([]string, len(m.Emitted))
	for i, e := range m.Emitted {
		out[i] = e.Event
	}
	return out
}

// StaticMarket is a MarketSource returning fixed rows.
type StaticMarket struct {
	Items []models.MarketDataItem
}

func (s StaticMarket) MarketData() []models.MarketDataItem { return s.Items }

// StaticPortfolio is a PortfolioSource returning fixed values.
type StaticPortfolio struct {
	Summary   models.PortfolioSummary
	Positions []models.Position
}

func (s StaticPortfolio) Snapshot() (models.PortfolioSummary, []models.Position) {
	return s.Summary, s.Positions
}

// MockMirror simulates the Redis snapshot mirror
type MockMirror struct {
	Saved   [][]models.Quote
	Seed    []models.Quote
	SaveErr error
	LoadErr error
	Mu      sync.Mutex
}

func (m *MockMirror) Save(ctx context.Context, quotes []models.Quote) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	batch := make([]models.Quote, len(quotes))
	copy(batch, quotes)
	m.Saved = append(m.Saved, batch)
	return nil
}

func (m *MockMirror) GetSnapshots(ctx context.Context, symbols []string) ([]models.Quote, error) {
	return nil, nil
}

func (m *MockMirror) LoadAll(ctx context.Context) ([]models.Quote, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Seed, nil
}

func (m *MockMirror) Close() error { return nil }

func (m *MockMirror) SaveCount() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return len(m.Saved)
}

type MockKafkaReader struct {
	Messages []kafka.Message
	Index    int
	Mu       sync.Mutex
	// Closed simulates a closed connection or end of stream
	Closed bool
}

func (m *MockKafkaReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if m.Closed {
		return kafka.Message{}, io.EOF
	}

	if m.Index >= len(m.Messages) {
		// Returning DeadlineExceeded is a clean way to stop the read loop in tests
		return kafka.Message{}, context.DeadlineExceeded
	}

	msg := m.Messages[m.Index]
	m.Index++
	return msg, nil
}

func (m *MockKafkaReader) Close() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
	return nil
}

// WaitFor polls cond until it holds or d elapses.
func WaitFor(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out: %s", msg)
}
