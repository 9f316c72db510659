// Package api is the thin HTTP transport over the executor. It does
// serialization and status mapping only; every rule lives in the core.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/errs"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/executor"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

type Handler struct {
	exec   *executor.Executor
	logger *zap.Logger
}

func NewHandler(exec *executor.Executor, logger *zap.Logger) *Handler {
	return &Handler{exec: exec, logger: logger}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.health)
	r.POST("/accounts", h.createAccount)
	r.POST("/orders", h.placeOrder)
	r.POST("/orders/:id/cancel", h.cancelOrder)
	r.POST("/accounts/:id/deposit", h.deposit)
	r.POST("/accounts/:id/withdraw", h.withdraw)
	r.GET("/accounts/:id/portfolio", h.portfolio)
	r.GET("/accounts/:id/transactions", h.transactions)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createAccountRequest struct {
	AccountID   string          `json:"account_id" binding:"required"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
}

func (h *Handler) createAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	account, err := h.exec.CreateAccount(c.Request.Context(), req.AccountID, req.OpeningCash)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "account created",
		"account_id": account.ID,
		"cash":       account.Cash.StringFixed(2),
	})
}

type placeOrderRequest struct {
	AccountID string          `json:"account_id" binding:"required"`
	Side      string          `json:"side" binding:"required"`
	Ticker    string          `json:"ticker" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	receipt, err := h.exec.PlaceOrder(c.Request.Context(), req.AccountID, models.OrderSide(req.Side), req.Ticker, req.Quantity)
	if err != nil && receipt.Order.ID == "" {
		h.fail(c, err)
		return
	}

	if err != nil {
		// Rejected but recorded: the receipt carries the REJECTED order.
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "order rejected: " + err.Error(),
			"order":   orderView(receipt.Order),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "order executed",
		"order":   orderView(receipt.Order),
	})
}

func (h *Handler) cancelOrder(c *gin.Context) {
	receipt, err := h.exec.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	message := "order canceled"
	if receipt.Transaction == nil {
		message = "order already " + string(receipt.Order.Status)
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"order":   orderView(receipt.Order),
	})
}

type cashRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func (h *Handler) deposit(c *gin.Context) {
	var req cashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	balance, err := h.exec.Deposit(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "deposit completed",
		"cash":    balance.StringFixed(2),
	})
}

func (h *Handler) withdraw(c *gin.Context) {
	var req cashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	balance, err := h.exec.Withdraw(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "withdrawal completed",
		"cash":    balance.StringFixed(2),
	})
}

func (h *Handler) portfolio(c *gin.Context) {
	portfolio, err := h.exec.GetPortfolio(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	holdings := make([]gin.H, 0, len(portfolio.Holdings))
	for _, holding := range portfolio.Holdings {
		holdings = append(holdings, gin.H{
			"ticker":        holding.Ticker,
			"shares":        holding.Shares.String(),
			"avg_cost":      holding.AvgCost.StringFixed(2),
			"current_price": holding.CurrentPrice.StringFixed(2),
			"market_value":  holding.MarketValue.StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             "portfolio",
		"cash":                portfolio.Cash.StringFixed(2),
		"holdings":            holdings,
		"total_stock_value":   portfolio.TotalStockValue.StringFixed(2),
		"total_account_value": portfolio.TotalAccountValue.StringFixed(2),
	})
}

func (h *Handler) transactions(c *gin.Context) {
	transactions, err := h.exec.GetTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	views := make([]gin.H, 0, len(transactions))
	for _, tx := range transactions {
		views = append(views, gin.H{
			"id":         tx.ID,
			"order_id":   tx.OrderID,
			"type":       string(tx.Type),
			"ticker":     tx.Ticker,
			"quantity":   tx.Quantity.String(),
			"price":      tx.Price.StringFixed(2),
			"total":      tx.Total.StringFixed(2),
			"status":     string(tx.Status),
			"created_at": tx.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "transactions",
		"transactions": views,
	})
}

func orderView(order models.Order) gin.H {
	return gin.H{
		"id":         order.ID,
		"account_id": order.AccountID,
		"side":       string(order.Side),
		"ticker":     order.Ticker,
		"quantity":   order.Quantity.String(),
		"price":      order.Price.StringFixed(2),
		"status":     string(order.Status),
		"created_at": order.CreatedAt,
	}
}

// fail maps the error taxonomy onto HTTP statuses. Infrastructure failures
// are the only 5xx: business rejections are the caller's problem.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindInvalidArgument:
		status = http.StatusBadRequest
	case errs.KindInsufficientFunds, errs.KindInsufficientShares, errs.KindMarketClosed, errs.KindInvalidState:
		status = http.StatusUnprocessableEntity
	case errs.KindInfrastructure:
		status = http.StatusInternalServerError
		h.logger.Error("request failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"message": err.Error()})
}
