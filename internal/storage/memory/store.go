// Package memory is the in-memory AccountStore used for development and
// tests. It is thread-safe and hands out copies so callers can never reach
// its internal state.
package memory

import (
	"context"
	"sync"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/errs"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

type Store struct {
	mu           sync.Mutex
	accounts     map[string]models.Account
	orders       map[string]models.Order
	transactions []models.Transaction
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]models.Account),
		orders:   make(map[string]models.Order),
	}
}

func (s *Store) CreateAccount(ctx context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return errs.InvalidState("account %s already exists", account.ID)
	}
	if account.Holdings == nil {
		account.Holdings = make(map[string]models.Holding)
	}
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return models.Account{}, errs.NotFound("account %s not found", accountID)
	}
	return account.Clone(), nil
}

// Apply commits the whole mutation under one lock hold, so a concurrent
// reader sees either all of it or none of it. Memory writes cannot fail
// partway, which is what makes this trivially all-or-nothing here; the
// postgres store needs a real transaction for the same guarantee.
func (s *Store) Apply(ctx context.Context, m models.AccountMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[m.AccountID]
	if !ok {
		return errs.NotFound("account %s not found", m.AccountID)
	}

	account = account.Clone()
	account.Cash = m.Cash
	if m.SetHolding != nil {
		account.Holdings[m.SetHolding.Ticker] = *m.SetHolding
	}
	if m.RemoveTicker != "" {
		delete(account.Holdings, m.RemoveTicker)
	}
	s.accounts[m.AccountID] = account

	if m.Order != nil {
		s.orders[m.Order.ID] = *m.Order
	}
	s.transactions = append(s.transactions, m.Transaction)
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return models.Order{}, errs.NotFound("order %s not found", orderID)
	}
	return order, nil
}

// SaveOrder upserts an order outside a settlement mutation. Used to seed
// pending orders and by the cancel path's status transition.
func (s *Store) SaveOrder(ctx context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = order
	return nil
}

func (s *Store) TransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Appends happen in commit order, so walking backwards gives most
	// recent first even when timestamps collide.
	var result []models.Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].AccountID == accountID {
			result = append(result, s.transactions[i])
		}
	}
	return result, nil
}

var _ interfaces.AccountStore = (*Store)(nil)
