// Package executor orchestrates one request end to end: market gate,
// per-account exclusive section, single price read, validation, atomic
// ledger mutation, settlement event.
package executor

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/errs"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/market"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models/events"
)

// settlementScale is the number of decimal places money is rounded to, and
// it is applied only when a total settles. Intermediate figures (notably the
// weighted average cost) keep full precision so repeated operations do not
// compound rounding error.
const settlementScale = 2

// Receipt is the outcome of a place/cancel request: the order in its
// terminal (or echoed) status and the transaction appended for it, if any.
type Receipt struct {
	Order       models.Order
	Transaction *models.Transaction
}

type Executor struct {
	ledger *ledger.Ledger
	clock  *market.Clock
	prices interfaces.PriceSource
	events interfaces.EventPublisher
	topic  string
	logger *zap.Logger
	now    func() time.Time
}

// New builds an executor. events may be nil when no broker is configured.
func New(l *ledger.Ledger, clock *market.Clock, prices interfaces.PriceSource, events interfaces.EventPublisher, topic string, logger *zap.Logger) *Executor {
	return &Executor{
		ledger: l,
		clock:  clock,
		prices: prices,
		events: events,
		topic:  topic,
		logger: logger,
		now:    time.Now,
	}
}

// WithNow overrides the executor's clock source. Tests use it to pin the
// request timestamp inside (or outside) the trading session.
func (e *Executor) WithNow(now func() time.Time) *Executor {
	e.now = now
	return e
}

// PlaceOrder runs a buy or sell to a terminal outcome. The quote is read
// exactly once, inside the account's exclusive section, and that one price
// backs both the affordability check and the settlement total.
//
// A business rejection raised inside the exclusive section (insufficient
// funds or shares) still persists the REJECTED order and its transaction
// record; cash and holdings stay untouched. Failures before the exclusive
// section write nothing at all.
func (e *Executor) PlaceOrder(ctx context.Context, accountID string, side models.OrderSide, ticker string, quantity decimal.Decimal) (Receipt, error) {
	if accountID == "" {
		return Receipt{}, errs.InvalidArgument("account id is required")
	}
	if ticker == "" {
		return Receipt{}, errs.InvalidArgument("ticker is required")
	}
	if !side.Valid() {
		return Receipt{}, errs.InvalidArgument("side must be BUY or SELL, got %q", side)
	}
	if !quantity.IsPositive() {
		return Receipt{}, errs.InvalidArgument("quantity must be positive, got %s", quantity)
	}

	requestedAt := e.now()
	if status := e.clock.IsOpen(requestedAt); !status.Open {
		return Receipt{}, errs.MarketClosed(status.Reason)
	}

	var (
		receipt   Receipt
		rejection error
	)

	err := e.ledger.WithAccount(ctx, accountID, func(snapshot models.Account) (*models.AccountMutation, error) {
		quote, err := e.prices.GetQuote(ctx, ticker)
		if err != nil {
			return nil, err
		}

		order := models.Order{
			ID:        uuid.New().String(),
			AccountID: accountID,
			Side:      side,
			Ticker:    ticker,
			Quantity:  quantity,
			Price:     quote.Price,
			Status:    models.OrderPending,
			CreatedAt: requestedAt,
		}
		total := quote.Price.Mul(quantity).Round(settlementScale)

		mutation := models.AccountMutation{
			AccountID: accountID,
			Cash:      snapshot.Cash,
		}

		switch side {
		case models.SideBuy:
			if snapshot.Cash.LessThan(total) {
				rejection = errs.InsufficientFunds("need %s, have %s", total.StringFixed(settlementScale), snapshot.Cash.StringFixed(settlementScale))
				break
			}
			mutation.Cash = snapshot.Cash.Sub(total)
			mutation.SetHolding = buyHolding(snapshot.Holdings[ticker], ticker, quantity, quote.Price)

		case models.SideSell:
			held, ok := snapshot.Holdings[ticker]
			if !ok || held.Shares.LessThan(quantity) {
				rejection = errs.InsufficientShares("selling %s %s, holding %s", quantity, ticker, held.Shares)
				break
			}
			mutation.Cash = snapshot.Cash.Add(total)
			remaining := held.Shares.Sub(quantity)
			if remaining.IsZero() {
				mutation.RemoveTicker = ticker
			} else {
				// Selling never moves the average cost.
				held.Shares = remaining
				mutation.SetHolding = &held
			}
		}

		if rejection != nil {
			order.Status = models.OrderRejected
		} else {
			order.Status = models.OrderExecuted
		}

		tx := models.Transaction{
			ID:        uuid.New().String(),
			AccountID: accountID,
			OrderID:   order.ID,
			Type:      models.TransactionType(side),
			Ticker:    ticker,
			Quantity:  quantity,
			Price:     quote.Price,
			Total:     total,
			Status:    order.Status,
			CreatedAt: requestedAt,
		}
		mutation.Order = &order
		mutation.Transaction = tx
		receipt = Receipt{Order: order, Transaction: &tx}
		return &mutation, nil
	})
	if err != nil {
		return Receipt{}, err
	}

	e.publish(receipt.Transaction)
	e.logger.Info("order settled",
		zap.String("order_id", receipt.Order.ID),
		zap.String("account_id", accountID),
		zap.String("side", string(side)),
		zap.String("ticker", ticker),
		zap.String("status", string(receipt.Order.Status)),
	)
	return receipt, rejection
}

// buyHolding folds a purchase into a position using the quantity-weighted
// average: (oldAvg*oldShares + price*qty) / (oldShares+qty). With no prior
// position the average is simply the purchase price.
func buyHolding(old models.Holding, ticker string, quantity, price decimal.Decimal) *models.Holding {
	newShares := old.Shares.Add(quantity)
	cost := old.AvgCost.Mul(old.Shares).Add(price.Mul(quantity))
	return &models.Holding{
		Ticker:  ticker,
		Shares:  newShares,
		AvgCost: cost.Div(newShares),
	}
}

// CancelOrder cancels a PENDING order: status moves to CANCELED and a CANCEL
// transaction is appended with the total the order would have settled for,
// but nothing was settled, so cash and holdings do not move. Canceling an
// order already in a terminal status is an idempotent echo of that status.
func (e *Executor) CancelOrder(ctx context.Context, orderID string) (Receipt, error) {
	if orderID == "" {
		return Receipt{}, errs.InvalidArgument("order id is required")
	}

	order, err := e.ledger.Order(ctx, orderID)
	if err != nil {
		return Receipt{}, err
	}
	if order.Status.Terminal() {
		return Receipt{Order: order}, nil
	}

	var receipt Receipt
	err = e.ledger.WithAccount(ctx, order.AccountID, func(snapshot models.Account) (*models.AccountMutation, error) {
		// Re-read under the lock; the order may have settled since the
		// unlocked check above.
		current, err := e.ledger.Order(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if current.Status.Terminal() {
			receipt = Receipt{Order: current}
			return nil, nil
		}

		current.Status = models.OrderCanceled
		tx := models.Transaction{
			ID:        uuid.New().String(),
			AccountID: current.AccountID,
			OrderID:   current.ID,
			Type:      models.TxCancel,
			Ticker:    current.Ticker,
			Quantity:  current.Quantity,
			Price:     current.Price,
			Total:     current.Price.Mul(current.Quantity).Round(settlementScale),
			Status:    models.OrderCanceled,
			CreatedAt: e.now(),
		}
		receipt = Receipt{Order: current, Transaction: &tx}
		return &models.AccountMutation{
			AccountID:   current.AccountID,
			Cash:        snapshot.Cash,
			Order:       &current,
			Transaction: tx,
		}, nil
	})
	if err != nil {
		return Receipt{}, err
	}

	if receipt.Transaction != nil {
		e.publish(receipt.Transaction)
		e.logger.Info("order canceled",
			zap.String("order_id", orderID),
			zap.String("account_id", receipt.Order.AccountID),
		)
	}
	return receipt, nil
}

// Deposit credits cash. The amount settles rounded to two decimal places.
func (e *Executor) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return e.cashOp(ctx, accountID, amount, models.TxDeposit)
}

// Withdraw debits cash, failing with InsufficientFunds when the balance
// cannot cover the amount. A failed withdrawal writes nothing.
func (e *Executor) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return e.cashOp(ctx, accountID, amount, models.TxWithdraw)
}

func (e *Executor) cashOp(ctx context.Context, accountID string, amount decimal.Decimal, txType models.TransactionType) (decimal.Decimal, error) {
	if accountID == "" {
		return decimal.Zero, errs.InvalidArgument("account id is required")
	}
	if !amount.IsPositive() {
		return decimal.Zero, errs.InvalidArgument("amount must be positive, got %s", amount)
	}

	total := amount.Round(settlementScale)
	var (
		newCash decimal.Decimal
		tx      models.Transaction
	)

	err := e.ledger.WithAccount(ctx, accountID, func(snapshot models.Account) (*models.AccountMutation, error) {
		switch txType {
		case models.TxDeposit:
			newCash = snapshot.Cash.Add(total)
		case models.TxWithdraw:
			if snapshot.Cash.LessThan(total) {
				return nil, errs.InsufficientFunds("withdrawing %s, have %s", total.StringFixed(settlementScale), snapshot.Cash.StringFixed(settlementScale))
			}
			newCash = snapshot.Cash.Sub(total)
		}

		tx = models.Transaction{
			ID:        uuid.New().String(),
			AccountID: accountID,
			Type:      txType,
			Ticker:    models.CashTicker,
			Quantity:  decimal.Zero,
			Price:     decimal.Zero,
			Total:     total,
			Status:    models.OrderExecuted,
			CreatedAt: e.now(),
		}
		return &models.AccountMutation{
			AccountID:   accountID,
			Cash:        newCash,
			Transaction: tx,
		}, nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	e.publish(&tx)
	e.logger.Info("cash settled",
		zap.String("account_id", accountID),
		zap.String("type", string(txType)),
		zap.String("total", total.StringFixed(settlementScale)),
	)
	return newCash, nil
}

// PortfolioHolding is one priced position in a portfolio view.
type PortfolioHolding struct {
	Ticker       string
	Shares       decimal.Decimal
	AvgCost      decimal.Decimal
	CurrentPrice decimal.Decimal
	MarketValue  decimal.Decimal
}

// Portfolio is the account's current state marked to the latest quotes.
type Portfolio struct {
	AccountID         string
	Cash              decimal.Decimal
	Holdings          []PortfolioHolding
	TotalStockValue   decimal.Decimal
	TotalAccountValue decimal.Decimal
}

// GetPortfolio snapshots the account and marks every holding to its current
// quote.
func (e *Executor) GetPortfolio(ctx context.Context, accountID string) (Portfolio, error) {
	snapshot, err := e.ledger.Snapshot(ctx, accountID)
	if err != nil {
		return Portfolio{}, err
	}

	portfolio := Portfolio{
		AccountID: accountID,
		Cash:      snapshot.Cash,
	}

	tickers := make([]string, 0, len(snapshot.Holdings))
	for ticker := range snapshot.Holdings {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	stockValue := decimal.Zero
	for _, ticker := range tickers {
		held := snapshot.Holdings[ticker]
		quote, err := e.prices.GetQuote(ctx, ticker)
		if err != nil {
			return Portfolio{}, err
		}
		value := quote.Price.Mul(held.Shares).Round(settlementScale)
		stockValue = stockValue.Add(value)
		portfolio.Holdings = append(portfolio.Holdings, PortfolioHolding{
			Ticker:       ticker,
			Shares:       held.Shares,
			AvgCost:      held.AvgCost,
			CurrentPrice: quote.Price,
			MarketValue:  value,
		})
	}
	portfolio.TotalStockValue = stockValue
	portfolio.TotalAccountValue = snapshot.Cash.Add(stockValue)
	return portfolio, nil
}

// GetTransactions returns the account's history, most recent first.
func (e *Executor) GetTransactions(ctx context.Context, accountID string) ([]models.Transaction, error) {
	return e.ledger.Transactions(ctx, accountID)
}

// CreateAccount provisions an account with an opening balance.
func (e *Executor) CreateAccount(ctx context.Context, accountID string, openingCash decimal.Decimal) (models.Account, error) {
	if accountID == "" {
		return models.Account{}, errs.InvalidArgument("account id is required")
	}
	if openingCash.IsNegative() {
		return models.Account{}, errs.InvalidArgument("opening cash cannot be negative, got %s", openingCash)
	}

	account := models.Account{
		ID:        accountID,
		Cash:      openingCash.Round(settlementScale),
		Holdings:  make(map[string]models.Holding),
		CreatedAt: e.now(),
	}
	if err := e.ledger.CreateAccount(ctx, account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// publish mirrors a committed transaction onto the event topic. The ledger
// is authoritative; a publish failure is logged, never rolled back into.
func (e *Executor) publish(tx *models.Transaction) {
	if e.events == nil || tx == nil {
		return
	}

	event := events.OrderSettled{
		TransactionID: tx.ID,
		OrderID:       tx.OrderID,
		AccountID:     tx.AccountID,
		Type:          string(tx.Type),
		Ticker:        tx.Ticker,
		Quantity:      tx.Quantity,
		Price:         tx.Price,
		Total:         tx.Total,
		Status:        string(tx.Status),
		OccurredAt:    tx.CreatedAt,
	}
	if err := e.events.Publish(e.topic, tx.AccountID, event); err != nil {
		e.logger.Warn("publish settlement event",
			zap.String("transaction_id", tx.ID),
			zap.Error(err),
		)
	}
}
