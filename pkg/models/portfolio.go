package models

// PortfolioSummary is pushed on the portfolio cadence.
type PortfolioSummary struct {
	TotalValue float64 `json:"totalValue"`
	DailyPnL   float64 `json:"dailyPnL"`
	TotalPnL   float64 `json:"totalPnL"`
	Positions  int     `json:"positions"`
	WinRate    float64 `json:"winRate"`
}

type Position struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Type          string  `json:"type"` // "call" | "put"
	Strike        float64 `json:"strike"`
	Expiration    string  `json:"expiration"`
	Quantity      int     `json:"quantity"`
	CostBasis     float64 `json:"costBasis"`
	CurrentPrice  float64 `json:"currentPrice"`
	UnrealizedPnL float64 `json:"unrealizedPnL"`
}

// MarketDataItem is one row of the market-data channel.
type MarketDataItem struct {
	Symbol string   `json:"symbol"`
	Name   string   `json:"name,omitempty"`
	Price  float64  `json:"price"`
	Change *float64 `json:"change,omitempty"`
	Volume int64    `json:"volume"`
}

// OptionQuote fields are opaque numbers; no pricing model stands behind them.
type OptionQuote struct {
	Symbol            string   `json:"symbol"`
	Bid               float64  `json:"bid"`
	Ask               float64  `json:"ask"`
	Last              float64  `json:"last"`
	Volume            int64    `json:"volume"`
	OpenInterest      int64    `json:"openInterest"`
	Delta             *float64 `json:"delta,omitempty"`
	Gamma             *float64 `json:"gamma,omitempty"`
	Theta             *float64 `json:"theta,omitempty"`
	Vega              *float64 `json:"vega,omitempty"`
	ImpliedVolatility *float64 `json:"impliedVolatility,omitempty"`
}

type ChartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// SymbolMatch is one hit from the upstream symbol lookup.
type SymbolMatch struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// UpstreamQuote mirrors the upstream quote endpoint.
type UpstreamQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

type BrokerageCredentials struct {
	APIKey    string `json:"apiKey" binding:"required"`
	APISecret string `json:"apiSecret" binding:"required"`
}

type BrokerageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
