package quotes

import (
	"context"

	"github.com/shubham-shewale/options-relay/pkg/models"
)

// Upstream describes the market-data lookup service.
//
//go:generate mockgen -package=quotes_test -destination=mock_upstream_test.go -source=upstream.go Upstream
type Upstream interface {
	Search(ctx context.Context, query string) ([]models.SymbolMatch, error)
	Quote(ctx context.Context, symbol string) (models.UpstreamQuote, error)
}
