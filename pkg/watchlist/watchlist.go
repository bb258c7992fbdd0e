// Package watchlist loads the set of symbols the feed subscribes to at startup.
package watchlist

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Entry struct {
	Symbol    string  `yaml:"symbol"`
	Name      string  `yaml:"name,omitempty"`
	BasePrice float64 `yaml:"base_price,omitempty"`
}

type file struct {
	Watchlist []Entry `yaml:"watchlist"`
}

// Default is used when no watch-list file is configured.
func Default() []Entry {
	return []Entry{
		{Symbol: "SPY", Name: "SPDR S&P 500 ETF", BasePrice: 500.00},
		{Symbol: "AAPL", Name: "Apple Inc.", BasePrice: 173.50},
		{Symbol: "MSFT", Name: "Microsoft Corp.", BasePrice: 378.85},
		{Symbol: "NVDA", Name: "NVIDIA Corp.", BasePrice: 721.28},
		{Symbol: "META", Name: "Meta Platforms", BasePrice: 484.03},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", BasePrice: 141.80},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", BasePrice: 178.25},
		{Symbol: "TSLA", Name: "Tesla Inc.", BasePrice: 202.64},
	}
}

// Load reads a YAML watch-list. An empty path yields Default().
// Symbols are upper-cased and de-duplicated, first occurrence wins.
func Load(path string) ([]Entry, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse watchlist: %w", err)
	}
	out := Normalize(f.Watchlist)
	if len(out) == 0 {
		return nil, fmt.Errorf("watchlist %s has no symbols", path)
	}
	return out, nil
}

func Normalize(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		e.Symbol = strings.ToUpper(strings.TrimSpace(e.Symbol))
		if e.Symbol == "" {
			continue
		}
		if _, dup := seen[e.Symbol]; dup {
			continue
		}
		seen[e.Symbol] = struct{}{}
		out = append(out, e)
	}
	return out
}

func Symbols(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out
}

// Names maps symbol to display name for entries that have one.
func Names(entries []Entry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			out[e.Symbol] = e.Name
		}
	}
	return out
}

func BasePrices(entries []Entry) map[string]float64 {
	out := make(map[string]float64, len(entries))
	for _, e := range entries {
		if e.BasePrice > 0 {
			out[e.Symbol] = e.BasePrice
		}
	}
	return out
}
