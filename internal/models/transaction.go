package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashTicker is the sentinel ticker used on pure-cash transactions
// (deposits and withdrawals).
const CashTicker = "CASH"

type TransactionType string

const (
	TxBuy      TransactionType = "BUY"
	TxSell     TransactionType = "SELL"
	TxDeposit  TransactionType = "DEPOSIT"
	TxWithdraw TransactionType = "WITHDRAW"
	TxCancel   TransactionType = "CANCEL"
)

// Transaction is one record in an account's append-only history. Records are
// never mutated or deleted after the mutation that created them commits.
type Transaction struct {
	ID        string
	AccountID string
	OrderID   string // empty for deposits/withdrawals
	Type      TransactionType
	Ticker    string
	Quantity  decimal.Decimal
	Price     decimal.Decimal // settlement price per share; zero for cash ops
	Total     decimal.Decimal // settled amount, rounded to 2dp
	Status    OrderStatus
	CreatedAt time.Time
}
