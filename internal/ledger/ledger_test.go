package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/errs"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage/memory"
)

func newLedger(t *testing.T, accountID string, cash string) *Ledger {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.CreateAccount(context.Background(), models.Account{
		ID:        accountID,
		Cash:      decimal.RequireFromString(cash),
		Holdings:  make(map[string]models.Holding),
		CreatedAt: time.Now(),
	}))
	return New(store)
}

func TestWithAccount_AppliesMutation(t *testing.T) {
	l := newLedger(t, "acc-1", "100.00")
	ctx := context.Background()

	err := l.WithAccount(ctx, "acc-1", func(snapshot models.Account) (*models.AccountMutation, error) {
		return &models.AccountMutation{
			AccountID:   "acc-1",
			Cash:        snapshot.Cash.Sub(decimal.NewFromInt(40)),
			Transaction: models.Transaction{ID: uuid.New().String(), AccountID: "acc-1", CreatedAt: time.Now()},
		}, nil
	})
	require.NoError(t, err)

	account, err := l.Snapshot(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, account.Cash.Equal(decimal.NewFromInt(60)))
}

func TestWithAccount_ErrorWritesNothing(t *testing.T) {
	l := newLedger(t, "acc-1", "100.00")
	ctx := context.Background()

	wantErr := errors.New("validation failed")
	err := l.WithAccount(ctx, "acc-1", func(models.Account) (*models.AccountMutation, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	account, err := l.Snapshot(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, account.Cash.Equal(decimal.NewFromInt(100)))

	transactions, err := l.Transactions(ctx, "acc-1")
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestWithAccount_NilMutationIsReadOnly(t *testing.T) {
	l := newLedger(t, "acc-1", "100.00")

	err := l.WithAccount(context.Background(), "acc-1", func(models.Account) (*models.AccountMutation, error) {
		return nil, nil
	})
	require.NoError(t, err)

	transactions, err := l.Transactions(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestWithAccount_UnknownAccount(t *testing.T) {
	l := newLedger(t, "acc-1", "0")

	err := l.WithAccount(context.Background(), "ghost", func(models.Account) (*models.AccountMutation, error) {
		t.Fatal("fn should not run for a missing account")
		return nil, nil
	})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

// Increment the balance from many goroutines; with the per-account lock held
// across snapshot and apply, no update may be lost.
func TestWithAccount_SerializesSameAccount(t *testing.T) {
	l := newLedger(t, "acc-1", "0")
	ctx := context.Background()

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			err := l.WithAccount(ctx, "acc-1", func(snapshot models.Account) (*models.AccountMutation, error) {
				return &models.AccountMutation{
					AccountID:   "acc-1",
					Cash:        snapshot.Cash.Add(decimal.NewFromInt(1)),
					Transaction: models.Transaction{ID: uuid.New().String(), AccountID: "acc-1", CreatedAt: time.Now()},
				}, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	account, err := l.Snapshot(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, account.Cash.Equal(decimal.NewFromInt(workers)), "final cash %s", account.Cash)

	transactions, err := l.Transactions(ctx, "acc-1")
	require.NoError(t, err)
	assert.Len(t, transactions, workers)
}
