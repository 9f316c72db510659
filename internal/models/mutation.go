package models

import "github.com/shopspring/decimal"

// AccountMutation is the unit of write against one account: the new cash
// balance, at most one holding change, at most one order upsert, and the
// transaction record to append. A store applies the whole mutation or none
// of it.
type AccountMutation struct {
	AccountID string

	// Cash is the account's balance after the operation.
	Cash decimal.Decimal

	// SetHolding upserts a position; RemoveTicker deletes one (sell-all).
	// At most one of the two is set.
	SetHolding   *Holding
	RemoveTicker string

	// Order, when set, is inserted or replaces the stored order with the
	// same ID (the single PENDING -> terminal status transition).
	Order *Order

	// Transaction is appended to the account's history.
	Transaction Transaction
}
