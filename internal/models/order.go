package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

func (s OrderSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderExecuted OrderStatus = "EXECUTED"
	OrderRejected OrderStatus = "REJECTED"
	OrderCanceled OrderStatus = "CANCELED"
)

// Terminal reports whether the status can no longer change. PENDING is
// transient: in the synchronous model an order settles (or is rejected)
// inside the request that created it.
func (s OrderStatus) Terminal() bool {
	return s != OrderPending
}

// Order is one buy/sell request. Price is captured once, at request time,
// and is the price the order settles at.
type Order struct {
	ID        string
	AccountID string
	Side      OrderSide
	Ticker    string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
}
