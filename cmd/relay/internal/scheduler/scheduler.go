// Package scheduler runs the periodic per-session pushes.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/protocol"
	"github.com/shubham-shewale/options-relay/pkg/models"
)

// Emitter is the session-side sink for scheduled pushes. Emit must not block
// and must report false once the session has begun closing.
type Emitter interface {
	ID() string
	Emit(event string, v any) bool
}

// MarketSource never returns an empty list; it substitutes fallback rows.
type MarketSource interface {
	MarketData() []models.MarketDataItem
}

type PortfolioSource interface {
	Snapshot() (models.PortfolioSummary, []models.Position)
}

type Intervals struct {
	Portfolio time.Duration
	Market    time.Duration
}

type Scheduler struct {
	clock     Clock
	every     Intervals
	market    MarketSource
	portfolio PortfolioSource
	logger    *zap.Logger
}

func New(clock Clock, every Intervals, market MarketSource, portfolio PortfolioSource, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		clock:     clock,
		every:     every,
		market:    market,
		portfolio: portfolio,
		logger:    logger,
	}
}

// Attach starts the two cadences for one session. The caller owns the
// returned tasks and must Stop them on teardown.
func (s *Scheduler) Attach(ctx context.Context, e Emitter) []*Task {
	return []*Task{
		Start(ctx, s.clock, "portfolio", s.every.Portfolio, func(context.Context) { s.portfolioTick(e) }),
		Start(ctx, s.clock, "market-data", s.every.Market, func(context.Context) { s.marketTick(e) }),
	}
}

func (s *Scheduler) portfolioTick(e Emitter) {
	summary, positions := s.portfolio.Snapshot()
	if !e.Emit(protocol.EventPortfolioUpdate, summary) {
		return
	}
	e.Emit(protocol.EventPositionsUpdate, positions)
}

func (s *Scheduler) marketTick(e Emitter) {
	items := s.market.MarketData()
	if len(items) == 0 {
		s.logger.Warn("Market source returned nothing, skipping tick", zap.String("session", e.ID()))
		return
	}
	e.Emit(protocol.EventMarketDataUpdate, items)
}
