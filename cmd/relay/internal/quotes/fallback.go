package quotes

import "github.com/shubham-shewale/options-relay/pkg/models"

const placeholderPrice = 100.0

type fallbackRow struct {
	Symbol        string
	Name          string
	Price         float64
	Change        float64
	ChangePercent float64
	Volume        int64
}

// Served whenever the store has never seen a symbol. Timestamps are zero so
// callers can tell these apart from feed data.
var fallbackRows = []fallbackRow{
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 173.50, Change: 2.30, ChangePercent: 1.34, Volume: 52000000},
	{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 378.85, Change: 4.15, ChangePercent: 1.11, Volume: 28000000},
	{Symbol: "NVDA", Name: "NVIDIA Corp.", Price: 721.28, Change: 15.32, ChangePercent: 2.17, Volume: 35000000},
	{Symbol: "META", Name: "Meta Platforms", Price: 484.03, Change: 7.89, ChangePercent: 1.66, Volume: 18000000},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 141.80, Change: 1.45, ChangePercent: 1.03, Volume: 25000000},
}

func lookupFallback(symbol string) (fallbackRow, bool) {
	for _, r := range fallbackRows {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return fallbackRow{}, false
}

// FallbackQuote is the deterministic stand-in for a symbol with no data.
func FallbackQuote(symbol string) models.Quote {
	if r, ok := lookupFallback(symbol); ok {
		return models.Quote{Symbol: symbol, Price: r.Price, Volume: r.Volume}
	}
	return models.Quote{Symbol: symbol, Price: placeholderPrice}
}

func FallbackQuotes() []models.Quote {
	out := make([]models.Quote, len(fallbackRows))
	for i, r := range fallbackRows {
		out[i] = models.Quote{Symbol: r.Symbol, Price: r.Price, Volume: r.Volume}
	}
	return out
}

func FallbackMarketData() []models.MarketDataItem {
	out := make([]models.MarketDataItem, len(fallbackRows))
	for i, r := range fallbackRows {
		change := r.Change
		out[i] = models.MarketDataItem{
			Symbol: r.Symbol,
			Name:   r.Name,
			Price:  r.Price,
			Change: &change,
			Volume: r.Volume,
		}
	}
	return out
}
