// Package feed turns upstream trade envelopes into quote store updates.
package feed

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/metrics"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/quotestore"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/repository"
	"github.com/shubham-shewale/options-relay/pkg/models"
)

const defaultMirrorTimeout = 2 * time.Second

// FrameHandler consumes one raw upstream frame.
type FrameHandler interface {
	Handle(frame []byte) int
}

// Publisher receives the full store snapshot after every mutating frame.
type Publisher interface {
	Publish(quotes []models.Quote)
}

type PublisherFunc func(quotes []models.Quote)

func (f PublisherFunc) Publish(quotes []models.Quote) { f(quotes) }

type Ingestor struct {
	store   *quotestore.Store
	mirror  repository.SnapshotMirror
	pub     Publisher
	metrics *metrics.Metrics
	logger  *zap.Logger

	mirrorTimeout time.Duration
}

// NewIngestor wires the store to its side outputs. mirror and pub may be nil.
func NewIngestor(store *quotestore.Store, mirror repository.SnapshotMirror, pub Publisher, m *metrics.Metrics, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		store:         store,
		mirror:        mirror,
		pub:           pub,
		metrics:       m,
		logger:        logger,
		mirrorTimeout: defaultMirrorTimeout,
	}
}

// Handle applies one frame and returns how many trades were written.
// Non-trade envelopes are ignored; malformed input is dropped and counted.
func (i *Ingestor) Handle(frame []byte) int {
	var env models.FeedEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		i.metrics.FramesDropped.WithLabelValues(metrics.ReasonMalformed).Inc()
		i.logger.Debug("Dropping malformed frame", zap.Error(err), zap.Int("bytes", len(frame)))
		return 0
	}
	if env.Type != models.EnvelopeTrade {
		return 0
	}

	applied := make([]models.Quote, 0, len(env.Data))
	for _, rec := range env.Data {
		if !validRecord(rec) {
			i.metrics.FramesDropped.WithLabelValues(metrics.ReasonRecord).Inc()
			i.logger.Debug("Dropping trade record", zap.String("symbol", rec.Symbol), zap.Float64("price", rec.Price))
			continue
		}
		q := rec.Quote()
		i.store.Put(q)
		applied = append(applied, q)
	}
	if len(applied) == 0 {
		return 0
	}
	i.metrics.TradesIngested.Add(float64(len(applied)))

	i.mirrorBatch(applied)
	if i.pub != nil {
		i.pub.Publish(i.store.GetAll())
	}
	return len(applied)
}

func (i *Ingestor) mirrorBatch(batch []models.Quote) {
	if i.mirror == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), i.mirrorTimeout)
	defer cancel()
	if err := i.mirror.Save(ctx, batch); err != nil {
		i.metrics.MirrorErrors.Inc()
		i.logger.Warn("Snapshot mirror write failed", zap.Error(err), zap.Int("quotes", len(batch)))
	}
}

func validRecord(r models.TradeRecord) bool {
	return r.Symbol != "" && r.Price >= 0
}
