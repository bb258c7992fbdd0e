package hub

import (
	"sync"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/metrics"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/protocol"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/scheduler"
)

type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Session is one subscriber connection and the timers pushing to it.
type Session struct {
	id      string
	client  ClientInterface
	metrics *metrics.Metrics

	mu    sync.Mutex
	state State
	tasks []*scheduler.Task
}

func (s *Session) ID() string { return s.id }

// RemoteID identifies the underlying transport, for logs.
func (s *Session) RemoteID() string { return s.client.ID() }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Emit enqueues one frame. It reports false without sending unless the
// session is Open.
func (s *Session) Emit(event string, v any) bool {
	b, err := protocol.Encode(event, v)
	if err != nil {
		return false
	}
	return s.send(event, b)
}

// send holds the session lock across the enqueue so nothing is written once
// teardown has shut the gate. SendBytes never blocks.
func (s *Session) send(event string, b []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return false
	}
	if !s.client.SendBytes(b) {
		s.metrics.MessagesDropped.WithLabelValues(event).Inc()
		return false
	}
	s.metrics.MessagesSent.WithLabelValues(event).Inc()
	return true
}

// beginClose moves Open or Connecting to Closing and hands back the tasks
// to stop. ok is false when another caller already started teardown.
func (s *Session) beginClose() (tasks []*scheduler.Task, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosing || s.state == StateClosed {
		return nil, false
	}
	s.state = StateClosing
	tasks, s.tasks = s.tasks, nil
	return tasks, true
}

// open moves a Connecting session to Open. Any other state is left alone.
func (s *Session) open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnecting {
		return false
	}
	s.state = StateOpen
	return true
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
