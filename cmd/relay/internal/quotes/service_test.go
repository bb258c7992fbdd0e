package quotes_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/metrics"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/quotes"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/quotestore"
	"github.com/shubham-shewale/options-relay/pkg/models"
)

func newService(t *testing.T, upstream quotes.Upstream) (*quotes.Service, *quotestore.Store, *metrics.Metrics) {
	t.Helper()
	store := quotestore.New()
	m := metrics.New(prometheus.NewRegistry())
	names := map[string]string{"AAPL": "Apple Inc."}
	return quotes.NewService(store, upstream, names, m, zap.NewNop()), store, m
}

func TestValidSymbol(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want string
		ok   bool
	}{
		{"aapl", "AAPL", true},
		{" BRK.B ", "BRK.B", true},
		{"BINANCE:BTCUSDT", "BINANCE:BTCUSDT", true},
		{"", "", false},
		{"AAPL$", "AAPL$", false},
		{"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456", "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456", false},
	} {
		got, ok := quotes.ValidSymbol(tc.in)
		require.Equalf(t, tc.ok, ok, "input %q", tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestResolve_StoredWins(t *testing.T) {
	t.Parallel()
	svc, store, _ := newService(t, nil)
	store.Put(models.Quote{Symbol: "AAPL", Price: 151.5, Timestamp: 1001, Volume: 50})

	require.Equal(t, models.Quote{Symbol: "AAPL", Price: 151.5, Timestamp: 1001, Volume: 50}, svc.Resolve("AAPL"))
}

func TestResolve_Fallback(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t, nil)

	known := svc.Resolve("NVDA")
	require.Equal(t, "NVDA", known.Symbol)
	require.Equal(t, 721.28, known.Price)
	require.Zero(t, known.Timestamp)

	unknown := svc.Resolve("ZZZZ")
	require.Equal(t, models.Quote{Symbol: "ZZZZ", Price: 100}, unknown)

	// Deterministic across calls.
	require.Equal(t, unknown, svc.Resolve("ZZZZ"))
}

func TestTop_EmptyStoreReturnsFallbackSymbols(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t, nil)

	top := svc.Top()

	syms := make([]string, len(top))
	for i, q := range top {
		syms[i] = q.Symbol
		require.GreaterOrEqual(t, q.Price, 0.0)
		require.GreaterOrEqual(t, q.Volume, int64(0))
		require.GreaterOrEqual(t, q.Timestamp, int64(0))
	}
	require.Equal(t, []string{"AAPL", "MSFT", "NVDA", "META", "GOOGL"}, syms)
}

func TestTop_StoreNonEmpty(t *testing.T) {
	t.Parallel()
	svc, store, _ := newService(t, nil)
	store.Put(models.Quote{Symbol: "TSLA", Price: 202.64, Timestamp: 1, Volume: 3})

	require.Equal(t, []models.Quote{{Symbol: "TSLA", Price: 202.64, Timestamp: 1, Volume: 3}}, svc.Top())
}

func TestMarketData(t *testing.T) {
	t.Parallel()
	svc, store, _ := newService(t, nil)

	fallback := svc.MarketData()
	require.Len(t, fallback, 5)
	require.NotNil(t, fallback[0].Change)
	require.Equal(t, 2.30, *fallback[0].Change)

	store.Put(models.Quote{Symbol: "AAPL", Price: 150, Timestamp: 1, Volume: 10})
	store.Put(models.Quote{Symbol: "XYZ", Price: 5, Timestamp: 1, Volume: 1})

	items := svc.MarketData()
	require.Equal(t, []models.MarketDataItem{
		{Symbol: "AAPL", Name: "Apple Inc.", Price: 150, Volume: 10},
		{Symbol: "XYZ", Price: 5, Volume: 1},
	}, items)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	upstream := NewMockUpstream(ctrl)
	svc, _, m := newService(t, upstream)

	want := []models.SymbolMatch{{Symbol: "AAPL", Description: "APPLE INC", Type: "Common Stock"}}
	upstream.EXPECT().Search(gomock.Any(), "apple").Return(want, nil).Times(1)
	upstream.EXPECT().Search(gomock.Any(), "boom").Return(nil, errors.New("503")).Times(1)
	upstream.EXPECT().Search(gomock.Any(), "none").Return(nil, nil).Times(1)

	require.Equal(t, want, svc.Search(t.Context(), " apple "))

	failed := svc.Search(t.Context(), "boom")
	require.NotNil(t, failed)
	require.Empty(t, failed)
	require.EqualValues(t, 1, promtest.ToFloat64(m.UpstreamErrors.WithLabelValues("search")))

	require.NotNil(t, svc.Search(t.Context(), "none"))

	// Empty query never reaches the upstream.
	require.NotNil(t, svc.Search(t.Context(), "   "))
}

func TestSearch_NoUpstream(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t, nil)

	got := svc.Search(t.Context(), "apple")
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestDetail(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	upstream := NewMockUpstream(ctrl)
	svc, store, m := newService(t, upstream)

	live := models.UpstreamQuote{Current: 175, Change: 1.5, ChangePercent: 0.86, High: 176, Low: 173, Open: 174, PreviousClose: 173.5, Timestamp: 1700000000}
	upstream.EXPECT().Quote(gomock.Any(), "AAPL").Return(live, nil)
	require.Equal(t, live, svc.Detail(t.Context(), "AAPL"))

	upstream.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(models.UpstreamQuote{}, errors.New("timeout")).Times(2)

	store.Put(models.Quote{Symbol: "TSLA", Price: 200, Timestamp: 1700000000123, Volume: 4})
	derived := svc.Detail(t.Context(), "TSLA")
	require.Equal(t, 200.0, derived.Current)
	require.EqualValues(t, 1700000000, derived.Timestamp)
	require.Zero(t, derived.Change)

	fallback := svc.Detail(t.Context(), "MSFT")
	require.Equal(t, 378.85, fallback.Current)
	require.Equal(t, 4.15, fallback.Change)
	require.InDelta(t, 374.70, fallback.PreviousClose, 1e-9)

	require.EqualValues(t, 2, promtest.ToFloat64(m.UpstreamErrors.WithLabelValues("quote")))
}
