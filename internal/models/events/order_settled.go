package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSettled is published after a transaction record commits. It mirrors
// the appended record; downstream consumers never see a settlement the
// ledger did not.
type OrderSettled struct {
	TransactionID string          `json:"transaction_id"`
	OrderID       string          `json:"order_id,omitempty"`
	AccountID     string          `json:"account_id"`
	Type          string          `json:"type"`
	Ticker        string          `json:"ticker"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
