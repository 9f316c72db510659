package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/executor"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/market"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/pricing"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage/memory"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	prices := pricing.NewMemorySource()
	prices.SetQuote(models.Quote{Ticker: "AAPL", Price: decimal.RequireFromString("182.34")})

	clock, err := market.NewClock(market.Config{
		OpenTime:  "00:00",
		CloseTime: "23:59",
		Timezone:  "UTC",
	})
	require.NoError(t, err)

	exec := executor.New(ledger.New(store), clock, prices, nil, "", zap.NewNop()).
		WithNow(func() time.Time { return time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC) })

	router := gin.New()
	NewHandler(exec, zap.NewNop()).Register(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestAPI_TradeFlow(t *testing.T) {
	router := newTestRouter(t)

	w, resp := doJSON(t, router, http.MethodPost, "/accounts", gin.H{
		"account_id":   "acc-1",
		"opening_cash": "10000.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "10000.00", resp["cash"])

	w, resp = doJSON(t, router, http.MethodPost, "/orders", gin.H{
		"account_id": "acc-1",
		"side":       "BUY",
		"ticker":     "AAPL",
		"quantity":   "5",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	order := resp["order"].(map[string]any)
	assert.Equal(t, "EXECUTED", order["status"])
	assert.Equal(t, "182.34", order["price"])

	w, resp = doJSON(t, router, http.MethodGet, "/accounts/acc-1/portfolio", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9088.30", resp["cash"])
	assert.Equal(t, "911.70", resp["total_stock_value"])
	assert.Equal(t, "10000.00", resp["total_account_value"])

	w, resp = doJSON(t, router, http.MethodGet, "/accounts/acc-1/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	transactions := resp["transactions"].([]any)
	require.Len(t, transactions, 1)
}

func TestAPI_RejectionAndErrorMapping(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/accounts", gin.H{
		"account_id":   "acc-1",
		"opening_cash": "10.00",
	})

	// Business rejection: recorded order comes back with 422.
	w, resp := doJSON(t, router, http.MethodPost, "/orders", gin.H{
		"account_id": "acc-1",
		"side":       "BUY",
		"ticker":     "AAPL",
		"quantity":   "5",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	order := resp["order"].(map[string]any)
	assert.Equal(t, "REJECTED", order["status"])

	// Unknown account maps to 404.
	w, _ = doJSON(t, router, http.MethodGet, "/accounts/ghost/portfolio", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unknown ticker maps to 404.
	w, _ = doJSON(t, router, http.MethodPost, "/orders", gin.H{
		"account_id": "acc-1",
		"side":       "BUY",
		"ticker":     "ZZZZ",
		"quantity":   "1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Malformed body maps to 400.
	w, _ = doJSON(t, router, http.MethodPost, "/orders", gin.H{"side": "BUY"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Withdrawal past the balance maps to 422.
	w, _ = doJSON(t, router, http.MethodPost, "/accounts/acc-1/withdraw", gin.H{"amount": "100.00"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAPI_Health(t *testing.T) {
	router := newTestRouter(t)

	w, resp := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp["status"])
}
