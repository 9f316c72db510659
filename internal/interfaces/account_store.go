package interfaces

import (
	"context"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

// AccountStore owns durable account state. Apply is the only write path for
// settled operations and must be all-or-nothing: cash, holding change, order
// upsert, and the transaction append become visible together or not at all.
//
// The store is not responsible for serializing writers on one account; the
// ledger holds the per-account lock across snapshot and apply.
type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account) error
	GetAccount(ctx context.Context, accountID string) (models.Account, error)
	Apply(ctx context.Context, mutation models.AccountMutation) error

	GetOrder(ctx context.Context, orderID string) (models.Order, error)
	SaveOrder(ctx context.Context, order models.Order) error

	// TransactionsByAccount returns the account's history, most recent first.
	TransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error)
}
