// Package portfolio synthesizes the dashboard's portfolio payloads. The
// numbers are random stand-ins for a valuation source; greeks are opaque.
package portfolio

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shubham-shewale/options-relay/pkg/models"
)

const (
	chartDays = 30
	winRate   = 68
)

var positionSymbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA"}

// Rand is satisfied by *rand.Rand.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type Synthesizer struct {
	mu  sync.Mutex // guards rnd
	rnd Rand
	now func() time.Time
}

func New(rnd Rand, now func() time.Time) *Synthesizer {
	return &Synthesizer{rnd: rnd, now: now}
}

// NewDefault seeds from the wall clock.
func NewDefault() *Synthesizer {
	return New(rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

func (s *Synthesizer) Summary() models.PortfolioSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary(len(positionSymbols))
}

func (s *Synthesizer) Positions() []models.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positions()
}

// Snapshot returns a summary consistent with the position list it came with.
func (s *Synthesizer) Snapshot() (models.PortfolioSummary, []models.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	positions := s.positions()
	return s.summary(len(positions)), positions
}

func (s *Synthesizer) summary(n int) models.PortfolioSummary {
	return models.PortfolioSummary{
		TotalValue: cents(250000 + s.rnd.Float64()*10000),
		DailyPnL:   cents(5000 + s.rnd.Float64()*2000*s.sign()),
		TotalPnL:   cents(25000 + s.rnd.Float64()*5000),
		Positions:  n,
		WinRate:    winRate,
	}
}

func (s *Synthesizer) positions() []models.Position {
	now := s.now().UTC()
	out := make([]models.Position, len(positionSymbols))
	for i, sym := range positionSymbols {
		kind := "put"
		if s.rnd.Float64() > 0.5 {
			kind = "call"
		}
		expiry := now.Add(time.Duration(s.rnd.Float64() * float64(90*24*time.Hour)))
		out[i] = models.Position{
			ID:            fmt.Sprintf("pos-%d", i),
			Symbol:        sym,
			Type:          kind,
			Strike:        cents(100 + s.rnd.Float64()*100),
			Expiration:    expiry.Format("2006-01-02T15:04:05.000Z07:00"),
			Quantity:      s.rnd.Intn(10) + 1,
			CostBasis:     cents(1000 + s.rnd.Float64()*500),
			CurrentPrice:  cents(1000 + s.rnd.Float64()*1000),
			UnrealizedPnL: cents(s.rnd.Float64() * 1000 * s.sign()),
		}
	}
	return out
}

// Chart returns one point per day for the last 30 days, oldest first.
func (s *Synthesizer) Chart() models.ChartData {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	labels := make([]string, chartDays)
	data := make([]float64, chartDays)
	for i := 0; i < chartDays; i++ {
		labels[i] = now.AddDate(0, 0, i-(chartDays-1)).Format("1/2/2006")
		data[i] = cents(200000 + s.rnd.Float64()*100000)
	}
	return models.ChartData{
		Labels: labels,
		Datasets: []models.ChartDataset{{
			Label:           "Portfolio Value",
			Data:            data,
			BorderColor:     "rgb(59, 130, 246)",
			BackgroundColor: "rgba(59, 130, 246, 0.5)",
		}},
	}
}

// OptionQuote prices a contract loosely off the underlying's last trade.
func (s *Synthesizer) OptionQuote(symbol string, underlying float64) models.OptionQuote {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := decimal.NewFromFloat(underlying * (0.01 + s.rnd.Float64()*0.04)).Round(2)
	spread := decimal.NewFromFloat(0.01 + s.rnd.Float64()*0.2).Round(2)
	bid := decimal.Max(last.Sub(spread), decimal.Zero)

	delta := round4(s.rnd.Float64())
	gamma := round4(s.rnd.Float64() * 0.1)
	theta := round4(-s.rnd.Float64() * 0.5)
	vega := round4(s.rnd.Float64() * 0.3)
	iv := round4(0.15 + s.rnd.Float64()*0.6)

	return models.OptionQuote{
		Symbol:            symbol,
		Bid:               bid.InexactFloat64(),
		Ask:               last.Add(spread).InexactFloat64(),
		Last:              last.InexactFloat64(),
		Volume:            int64(s.rnd.Intn(10000)),
		OpenInterest:      int64(s.rnd.Intn(50000)),
		Delta:             &delta,
		Gamma:             &gamma,
		Theta:             &theta,
		Vega:              &vega,
		ImpliedVolatility: &iv,
	}
}

func (s *Synthesizer) sign() float64 {
	if s.rnd.Float64() > 0.5 {
		return 1
	}
	return -1
}

func cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func round4(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}
