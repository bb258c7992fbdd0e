package hub

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/metrics"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/protocol"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/scheduler"
)

type ClientInterface interface {
	ID() string
	SendBytes(b []byte) bool
	Close()
}

// TaskSource starts the periodic pushes for a session.
type TaskSource interface {
	Attach(ctx context.Context, e scheduler.Emitter) []*scheduler.Task
}

type Hub struct {
	sessions map[string]*Session

	tasks   TaskSource
	metrics *metrics.Metrics
	logger  *zap.Logger
	mu      sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(tasks TaskSource, m *metrics.Metrics, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		sessions: make(map[string]*Session),
		tasks:    tasks,
		metrics:  m,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register opens a session for client and attaches its timers.
func (h *Hub) Register(client ClientInterface) *Session {
	s := &Session{
		id:      uuid.NewString(),
		client:  client,
		metrics: h.metrics,
		state:   StateConnecting,
	}

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	h.metrics.ActiveSessions.Inc()

	if !s.open() {
		// Unregister already claimed the session.
		return s
	}
	tasks := h.tasks.Attach(h.ctx, s)

	s.mu.Lock()
	if s.state != StateOpen {
		// Unregister ran while the timers were starting.
		s.mu.Unlock()
		for _, t := range tasks {
			t.Stop()
		}
		return s
	}
	s.tasks = tasks
	s.mu.Unlock()

	h.logger.Info("Session opened", zap.String("session", s.id), zap.String("remote", client.ID()))
	return s
}

// Unregister tears a session down. When it returns no timer for the session
// is running and the transport is closed. Unknown or already closed ids are
// ignored.
func (h *Hub) Unregister(id string) {
	h.mu.RLock()
	s, ok := h.sessions[id]
	h.mu.RUnlock()
	if !ok {
		return
	}

	tasks, ok := s.beginClose()
	if !ok {
		return
	}
	for _, t := range tasks {
		t.Stop()
	}
	s.client.Close()
	s.setState(StateClosed)

	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
	h.metrics.ActiveSessions.Dec()

	h.logger.Info("Session closed", zap.String("session", id))
}

// Broadcast marshals once and enqueues to every open session. It returns
// the number of sessions that accepted the frame.
func (h *Hub) Broadcast(event string, v any) int {
	b, err := protocol.Encode(event, v)
	if err != nil {
		h.logger.Error("Failed to encode broadcast", zap.String("event", event), zap.Error(err))
		return 0
	}

	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if s.send(event, b) {
			delivered++
		}
	}
	return delivered
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Shutdown closes every session and stops accepting timers.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Unregister(id)
	}
	h.cancel()
}
