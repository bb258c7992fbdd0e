package models

import "math"

// Quote is the latest known trade for one symbol.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // feed event time, unix ms
	Volume    int64   `json:"volume"`
}

const (
	EnvelopeTrade     = "trade"
	EnvelopeSubscribe = "subscribe"
)

// FeedEnvelope is the discriminated message shape of the upstream stream.
// Data is only meaningful when Type is "trade".
type FeedEnvelope struct {
	Type string        `json:"type"`
	Data []TradeRecord `json:"data,omitempty"`
}

// TradeRecord is a single trade inside a "trade" envelope.
type TradeRecord struct {
	Symbol    string  `json:"s"`
	Price     float64 `json:"p"`
	Timestamp int64   `json:"t"`
	Volume    float64 `json:"v"` // some venues report fractional size
}

// Quote converts the record; volume is rounded and clamped at zero.
func (r TradeRecord) Quote() Quote {
	v := int64(math.Round(r.Volume))
	if v < 0 {
		v = 0
	}
	return Quote{Symbol: r.Symbol, Price: r.Price, Timestamp: r.Timestamp, Volume: v}
}

// SubscribeRequest is sent upstream once per watched symbol.
type SubscribeRequest struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}
