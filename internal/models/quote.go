package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the catalog's view of one ticker. The engine only ever reads it;
// the catalog service owns the values.
type Quote struct {
	Ticker    string          `json:"ticker"`
	Price     decimal.Decimal `json:"price"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Volume    int64           `json:"volume"`
	UpdatedAt time.Time       `json:"updated_at"`
}
