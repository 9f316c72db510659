package interfaces

import (
	"context"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

// PriceSource is the engine's read-only view of the quote feed. Unknown
// tickers return a NotFound error.
type PriceSource interface {
	GetQuote(ctx context.Context, ticker string) (models.Quote, error)
}
