// Package quotes answers pull-style reads over the quote store. Every read
// path goes through the same resolve-or-fallback policy, so no caller sees an
// empty or failed result for a well-formed symbol.
package quotes

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/metrics"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/quotestore"
	"github.com/shubham-shewale/options-relay/pkg/models"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.:\-]{1,32}$`)

// ValidSymbol upper-cases s and reports whether it is a plausible ticker.
func ValidSymbol(s string) (string, bool) {
	sym := strings.ToUpper(strings.TrimSpace(s))
	return sym, symbolPattern.MatchString(sym)
}

type Service struct {
	store    *quotestore.Store
	upstream Upstream
	names    map[string]string
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService builds the façade. upstream may be nil when no lookup service is
// configured; Search and Detail then fall back immediately.
func NewService(store *quotestore.Store, upstream Upstream, names map[string]string, m *metrics.Metrics, logger *zap.Logger) *Service {
	if names == nil {
		names = map[string]string{}
	}
	return &Service{
		store:    store,
		upstream: upstream,
		names:    names,
		metrics:  m,
		logger:   logger,
	}
}

// Resolve returns the stored quote, else the fallback record for symbol.
func (s *Service) Resolve(symbol string) models.Quote {
	if q, ok := s.store.Get(symbol); ok {
		return q
	}
	return FallbackQuote(symbol)
}

// Top returns every stored quote, or the fixed fallback list when the store
// has never been written.
func (s *Service) Top() []models.Quote {
	if all := s.store.GetAll(); len(all) > 0 {
		return all
	}
	return FallbackQuotes()
}

// MarketData is never empty.
func (s *Service) MarketData() []models.MarketDataItem {
	all := s.store.GetAll()
	if len(all) == 0 {
		return FallbackMarketData()
	}
	out := make([]models.MarketDataItem, len(all))
	for i, q := range all {
		out[i] = models.MarketDataItem{
			Symbol: q.Symbol,
			Name:   s.names[q.Symbol],
			Price:  q.Price,
			Volume: q.Volume,
		}
	}
	return out
}

// Search proxies to the lookup service. Failures yield an empty list.
func (s *Service) Search(ctx context.Context, query string) []models.SymbolMatch {
	query = strings.TrimSpace(query)
	if query == "" || s.upstream == nil {
		return []models.SymbolMatch{}
	}
	matches, err := s.upstream.Search(ctx, query)
	if err != nil {
		s.metrics.UpstreamErrors.WithLabelValues("search").Inc()
		s.logger.Warn("Symbol search failed", zap.String("query", query), zap.Error(err))
		return []models.SymbolMatch{}
	}
	if matches == nil {
		return []models.SymbolMatch{}
	}
	return matches
}

// Detail returns the upstream quote for symbol, or one derived from Resolve
// when the lookup fails.
func (s *Service) Detail(ctx context.Context, symbol string) models.UpstreamQuote {
	if s.upstream != nil {
		uq, err := s.upstream.Quote(ctx, symbol)
		if err == nil {
			return uq
		}
		s.metrics.UpstreamErrors.WithLabelValues("quote").Inc()
		s.logger.Warn("Quote lookup failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return s.derivedDetail(symbol)
}

func (s *Service) derivedDetail(symbol string) models.UpstreamQuote {
	q, stored := s.store.Get(symbol)
	if !stored {
		q = FallbackQuote(symbol)
	}
	d := models.UpstreamQuote{
		Current:       q.Price,
		High:          q.Price,
		Low:           q.Price,
		Open:          q.Price,
		PreviousClose: q.Price,
		Timestamp:     q.Timestamp / 1000,
	}
	if !stored {
		if r, ok := lookupFallback(symbol); ok {
			d.Change = r.Change
			d.ChangePercent = r.ChangePercent
			d.PreviousClose = r.Price - r.Change
		}
	}
	return d
}
