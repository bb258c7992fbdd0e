package protocol

import "encoding/json"

// Server → client events.
const (
	EventStockPriceUpdate = "stock-price-update"
	EventPortfolioUpdate  = "portfolio-update"
	EventPositionsUpdate  = "positions-update"
	EventMarketDataUpdate = "market-data-update"
	EventPong             = "pong"
	EventError            = "error"
)

// Client → server events.
const (
	EventPing = "ping"
)

// Envelope is the single frame shape on the websocket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outbound keeps Data typed so callers marshal once.
type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encode marshals an outbound frame.
func Encode(event string, data any) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: data})
}

type ErrorPayload struct {
	Message string `json:"message"`
}
