package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/metrics"
	"github.com/shubham-shewale/options-relay/pkg/models"
)

type StreamConfig struct {
	URL          string
	Token        string
	MinBackoff   time.Duration
	MaxBackoff   time.Duration
	PingInterval time.Duration
}

// Stream keeps one websocket open to the upstream feed and re-subscribes the
// watched symbols after every reconnect.
type Stream struct {
	cfg     StreamConfig
	handler FrameHandler
	metrics *metrics.Metrics
	logger  *zap.Logger
	dialer  websocket.Dialer

	mu         sync.Mutex
	subscribed map[string]struct{}
	order      []string
	outbound   chan models.SubscribeRequest // nil while disconnected
}

func NewStream(cfg StreamConfig, handler FrameHandler, m *metrics.Metrics, logger *zap.Logger) *Stream {
	return &Stream{
		cfg:     cfg,
		handler: handler,
		metrics: m,
		logger:  logger,
		dialer: websocket.Dialer{
			HandshakeTimeout:  10 * time.Second,
			EnableCompression: true,
		},
		subscribed: make(map[string]struct{}),
	}
}

// Subscribe adds symbol to the watched set. It reports false, and sends
// nothing, when the symbol is already watched or the live subscribe queue is
// full. While connected the subscribe message goes out immediately; otherwise
// on the next connect.
func (s *Stream) Subscribe(symbol string) bool {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribed[sym]; ok {
		return false
	}

	// A symbol only joins the set once its message is queued, so a caller
	// that hits a full queue can retry.
	if s.outbound != nil {
		select {
		case s.outbound <- subscribeMsgFor(sym):
		default:
			s.logger.Warn("Subscribe queue full, not watching symbol", zap.String("symbol", sym))
			return false
		}
	}
	s.subscribed[sym] = struct{}{}
	s.order = append(s.order, sym)
	return true
}

// Symbols returns the watched set in subscription order.
func (s *Stream) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Run blocks until ctx is cancelled. Connection failures are logged and
// retried with exponential backoff; they never clear the quote store.
func (s *Stream) Run(ctx context.Context) error {
	backoff := s.cfg.MinBackoff
	for {
		connected, err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.metrics.FeedDisconnects.Inc()
		if connected {
			backoff = s.cfg.MinBackoff
		}
		s.logger.Warn("Feed disconnected", zap.Error(err), zap.Duration("retry_in", backoff))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
		if backoff > s.cfg.MaxBackoff {
			backoff = s.cfg.MaxBackoff
		}
	}
}

func (s *Stream) runOnce(ctx context.Context) (bool, error) {
	target, err := s.endpoint()
	if err != nil {
		return false, err
	}
	conn, _, err := s.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	s.metrics.FeedConnects.Inc()

	// Taking the snapshot and publishing outbound under one lock means a
	// concurrent Subscribe lands in exactly one of the two.
	out := make(chan models.SubscribeRequest, 256)
	s.mu.Lock()
	pending := make([]string, len(s.order))
	copy(pending, s.order)
	s.outbound = out
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.outbound = nil
		s.mu.Unlock()
	}()

	for _, sym := range pending {
		if err := conn.WriteJSON(subscribeMsgFor(sym)); err != nil {
			return true, fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	s.logger.Info("Feed connected", zap.String("host", conn.RemoteAddr().String()), zap.Int("symbols", len(pending)))

	ping := time.NewTicker(s.cfg.PingInterval)
	defer ping.Stop()

	// Frames are handled one at a time on the reader goroutine; only this
	// goroutine writes to conn. Every return waits for the reader, so a frame
	// still in Handle finishes before the next connection can read.
	errCh := make(chan error, 1)
	readerDone := make(chan struct{})
	defer func() {
		conn.Close()
		<-readerDone
	}()
	go func() {
		defer close(readerDone)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			s.handler.Handle(data)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return true, ctx.Err()
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return true, fmt.Errorf("ping: %w", err)
			}
		case msg := <-out:
			if err := conn.WriteJSON(msg); err != nil {
				return true, fmt.Errorf("subscribe %s: %w", msg.Symbol, err)
			}
		case err := <-errCh:
			return true, fmt.Errorf("read: %w", err)
		}
	}
}

// endpoint appends the token as a query parameter.
func (s *Stream) endpoint() (string, error) {
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse feed url: %w", err)
	}
	if s.cfg.Token != "" {
		q := u.Query()
		q.Set("token", s.cfg.Token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func subscribeMsgFor(sym string) models.SubscribeRequest {
	return models.SubscribeRequest{Type: models.EnvelopeSubscribe, Symbol: sym}
}
