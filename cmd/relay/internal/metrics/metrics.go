// Package metrics holds the relay's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "options_relay"

// Drop reasons for FramesDropped.
const (
	ReasonMalformed = "malformed"
	ReasonRecord    = "invalid_record"
)

type Metrics struct {
	TradesIngested  prometheus.Counter
	FramesDropped   *prometheus.CounterVec
	FeedConnects    prometheus.Counter
	FeedDisconnects prometheus.Counter
	ActiveSessions  prometheus.Gauge
	MessagesSent    *prometheus.CounterVec
	MessagesDropped *prometheus.CounterVec
	UpstreamErrors  *prometheus.CounterVec
	MirrorErrors    prometheus.Counter
}

// New registers every collector on reg. Tests pass prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TradesIngested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "trades_ingested_total",
			Help: "Trade records written to the quote store.",
		}),
		FramesDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "feed_frames_dropped_total",
			Help: "Inbound feed frames or records discarded.",
		}, []string{"reason"}),
		FeedConnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "feed_connects_total",
			Help: "Successful upstream stream connections.",
		}),
		FeedDisconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "feed_disconnects_total",
			Help: "Upstream stream failures, including failed dials.",
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "active_sessions",
			Help: "Open subscriber sessions.",
		}),
		MessagesSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_sent_total",
			Help: "Messages queued to subscriber sessions.",
		}, []string{"event"}),
		MessagesDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_dropped_total",
			Help: "Messages discarded because a session buffer was full.",
		}, []string{"event"}),
		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "upstream_errors_total",
			Help: "Failed upstream lookup calls.",
		}, []string{"call"}),
		MirrorErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshot_mirror_errors_total",
			Help: "Failed writes to the snapshot mirror.",
		}),
	}
}
