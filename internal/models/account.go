package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the unit of ownership in the ledger: a cash balance plus the
// positions bought with it. Cash never goes below zero.
type Account struct {
	ID        string
	Cash      decimal.Decimal
	Holdings  map[string]Holding // keyed by ticker; an entry exists iff Shares > 0
	CreatedAt time.Time
}

// Holding is an account's position in one ticker. AvgCost is the
// quantity-weighted average purchase price; it only moves on buys.
type Holding struct {
	Ticker  string
	Shares  decimal.Decimal
	AvgCost decimal.Decimal
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the store's internal maps.
func (a Account) Clone() Account {
	cp := a
	cp.Holdings = make(map[string]Holding, len(a.Holdings))
	for ticker, h := range a.Holdings {
		cp.Holdings[ticker] = h
	}
	return cp
}
