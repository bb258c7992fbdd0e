// Package quotestore holds the latest quote per symbol.
//
// The store is written by feed ingestion and read by the broadcast scheduler and
// the query façade, which run on different goroutines, so every access goes
// through one RWMutex. Entries are values: a reader never sees a half-applied Put.
package quotestore

import (
	"sort"
	"sync"

	"github.com/shubham-shewale/options-relay/pkg/models"
)

type Store struct {
	mu     sync.RWMutex
	quotes map[string]models.Quote
}

func New() *Store {
	return &Store{quotes: make(map[string]models.Quote)}
}

// Put inserts or replaces the entry for q.Symbol. Arrival order wins;
// timestamps are not compared.
func (s *Store) Put(q models.Quote) {
	s.mu.Lock()
	s.quotes[q.Symbol] = q
	s.mu.Unlock()
}

func (s *Store) Get(symbol string) (models.Quote, bool) {
	s.mu.RLock()
	q, ok := s.quotes[symbol]
	s.mu.RUnlock()
	return q, ok
}

// GetAll returns a point-in-time copy sorted by symbol.
func (s *Store) GetAll() []models.Quote {
	s.mu.RLock()
	out := make([]models.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}
