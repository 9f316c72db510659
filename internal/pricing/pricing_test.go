package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/errs"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

func TestMemorySource(t *testing.T) {
	source := NewMemorySource()
	ctx := context.Background()

	_, err := source.GetQuote(ctx, "AAPL")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	source.SetQuote(models.Quote{Ticker: "AAPL", Price: decimal.RequireFromString("182.34")})

	quote, err := source.GetQuote(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("182.34")))
}

func TestRedisSource(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := NewRedisSource(client)
	ctx := context.Background()

	_, err := source.GetQuote(ctx, "AAPL")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	payload, err := json.Marshal(models.Quote{
		Ticker:    "AAPL",
		Price:     decimal.RequireFromString("182.34"),
		Volume:    120503,
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, mr.Set("stock:AAPL", string(payload)))

	quote, err := source.GetQuote(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("182.34")))
	assert.Equal(t, int64(120503), quote.Volume)
}

func TestRedisSource_BadPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := NewRedisSource(client)

	require.NoError(t, mr.Set("stock:AAPL", "not-json"))

	_, err := source.GetQuote(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, errs.ErrInfrastructure))
}
