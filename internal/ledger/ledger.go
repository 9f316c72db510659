// Package ledger owns each account's mutable state. Every write to an
// account passes through an exclusive section here, so concurrent requests
// against the same account serialize while different accounts proceed
// independently.
package ledger

import (
	"context"
	"sync"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/errs"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

// Ledger wraps the store with per-account mutual exclusion. The lock is held
// from snapshot through commit, so a validate-then-settle sequence can never
// interleave with another writer on the same account.
type Ledger struct {
	store interfaces.AccountStore
	muMap map[string]*sync.Mutex // one mutex per account id
	mapMu sync.Mutex             // protects muMap itself
}

func New(store interfaces.AccountStore) *Ledger {
	return &Ledger{
		store: store,
		muMap: make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) accountLock(accountID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	mu, exists := l.muMap[accountID]
	if !exists {
		mu = &sync.Mutex{}
		l.muMap[accountID] = mu
	}
	return mu
}

// WithAccount runs fn inside the account's exclusive section. fn receives a
// snapshot of the account and returns the mutation to commit, or nil for a
// read-only pass, or an error to abort with nothing written. The mutation is
// applied atomically by the store before the lock is released.
func (l *Ledger) WithAccount(ctx context.Context, accountID string, fn func(snapshot models.Account) (*models.AccountMutation, error)) error {
	mu := l.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	snapshot, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}

	mutation, err := fn(snapshot)
	if err != nil {
		return err
	}
	if mutation == nil {
		return nil
	}

	if err := l.store.Apply(ctx, *mutation); err != nil {
		return errs.Infrastructure(err, "apply account mutation")
	}
	return nil
}

// Snapshot returns a copy of the account outside any exclusive section.
// It observes only committed state: mutations are all-or-nothing in the
// store, so a reader never sees a half-applied operation.
func (l *Ledger) Snapshot(ctx context.Context, accountID string) (models.Account, error) {
	return l.store.GetAccount(ctx, accountID)
}

// Transactions returns the account's history, most recent first.
func (l *Ledger) Transactions(ctx context.Context, accountID string) ([]models.Transaction, error) {
	if _, err := l.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return l.store.TransactionsByAccount(ctx, accountID)
}

// CreateAccount registers a new account with the store.
func (l *Ledger) CreateAccount(ctx context.Context, account models.Account) error {
	return l.store.CreateAccount(ctx, account)
}

// Order looks up a single order by id.
func (l *Ledger) Order(ctx context.Context, orderID string) (models.Order, error) {
	return l.store.GetOrder(ctx, orderID)
}
