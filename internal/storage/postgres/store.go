// Package postgres is the durable AccountStore. Apply runs the compound
// mutation in one database transaction so the cash change, holding change,
// order upsert, and transaction append commit together or roll back together.
package postgres

import (
	"context"
	"database/sql"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/errs"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateAccount(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (id, cash, created_at) VALUES ($1, $2, $3)`

	_, err := s.db.ExecContext(ctx, query, account.ID, account.Cash, account.CreatedAt)
	if err != nil {
		return errs.Infrastructure(err, "insert account")
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	const accountQuery = `SELECT id, cash, created_at FROM accounts WHERE id = $1`

	var account models.Account
	err := s.db.QueryRowContext(ctx, accountQuery, accountID).
		Scan(&account.ID, &account.Cash, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Account{}, errs.NotFound("account %s not found", accountID)
	}
	if err != nil {
		return models.Account{}, errs.Infrastructure(err, "select account")
	}

	const holdingsQuery = `SELECT ticker, shares, avg_cost FROM holdings WHERE account_id = $1`

	rows, err := s.db.QueryContext(ctx, holdingsQuery, accountID)
	if err != nil {
		return models.Account{}, errs.Infrastructure(err, "select holdings")
	}
	defer rows.Close()

	account.Holdings = make(map[string]models.Holding)
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.Ticker, &h.Shares, &h.AvgCost); err != nil {
			return models.Account{}, errs.Infrastructure(err, "scan holding")
		}
		account.Holdings[h.Ticker] = h
	}
	if err := rows.Err(); err != nil {
		return models.Account{}, errs.Infrastructure(err, "iterate holdings")
	}
	return account, nil
}

func (s *Store) Apply(ctx context.Context, m models.AccountMutation) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Infrastructure(err, "begin mutation")
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const cashQuery = `UPDATE accounts SET cash = $1 WHERE id = $2`
	if _, err = dbTx.ExecContext(ctx, cashQuery, m.Cash, m.AccountID); err != nil {
		return errs.Infrastructure(err, "update cash")
	}

	if m.SetHolding != nil {
		const holdingQuery = `INSERT INTO holdings (account_id, ticker, shares, avg_cost)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, ticker) DO UPDATE SET shares = $3, avg_cost = $4`

		h := m.SetHolding
		if _, err = dbTx.ExecContext(ctx, holdingQuery, m.AccountID, h.Ticker, h.Shares, h.AvgCost); err != nil {
			return errs.Infrastructure(err, "upsert holding")
		}
	}

	if m.RemoveTicker != "" {
		const removeQuery = `DELETE FROM holdings WHERE account_id = $1 AND ticker = $2`
		if _, err = dbTx.ExecContext(ctx, removeQuery, m.AccountID, m.RemoveTicker); err != nil {
			return errs.Infrastructure(err, "remove holding")
		}
	}

	if m.Order != nil {
		if err = saveOrder(ctx, dbTx, *m.Order); err != nil {
			return err
		}
	}

	const txQuery = `INSERT INTO transactions (id, account_id, order_id, type, ticker, quantity, price, total, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	t := m.Transaction
	if _, err = dbTx.ExecContext(ctx, txQuery, t.ID, t.AccountID, t.OrderID, t.Type, t.Ticker, t.Quantity, t.Price, t.Total, t.Status, t.CreatedAt); err != nil {
		return errs.Infrastructure(err, "insert transaction")
	}

	if err = dbTx.Commit(); err != nil {
		return errs.Infrastructure(err, "commit mutation")
	}
	return nil
}

func saveOrder(ctx context.Context, execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, order models.Order) error {
	const query = `INSERT INTO orders (id, account_id, side, ticker, quantity, price, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET status = $7`

	_, err := execer.ExecContext(ctx, query, order.ID, order.AccountID, order.Side, order.Ticker, order.Quantity, order.Price, order.Status, order.CreatedAt)
	if err != nil {
		return errs.Infrastructure(err, "upsert order")
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	const query = `SELECT id, account_id, side, ticker, quantity, price, status, created_at
	FROM orders WHERE id = $1`

	var order models.Order
	err := s.db.QueryRowContext(ctx, query, orderID).
		Scan(&order.ID, &order.AccountID, &order.Side, &order.Ticker, &order.Quantity, &order.Price, &order.Status, &order.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Order{}, errs.NotFound("order %s not found", orderID)
	}
	if err != nil {
		return models.Order{}, errs.Infrastructure(err, "select order")
	}
	return order, nil
}

func (s *Store) SaveOrder(ctx context.Context, order models.Order) error {
	return saveOrder(ctx, s.db, order)
}

func (s *Store) TransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	const query = `SELECT id, account_id, order_id, type, ticker, quantity, price, total, status, created_at
	FROM transactions WHERE account_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, errs.Infrastructure(err, "select transactions")
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(&t.ID, &t.AccountID, &t.OrderID, &t.Type, &t.Ticker, &t.Quantity, &t.Price, &t.Total, &t.Status, &t.CreatedAt)
		if err != nil {
			return nil, errs.Infrastructure(err, "scan transaction")
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Infrastructure(err, "iterate transactions")
	}
	return transactions, nil
}

var _ interfaces.AccountStore = (*Store)(nil)
