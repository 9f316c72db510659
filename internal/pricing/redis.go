package pricing

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/errs"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

// keyPrefix matches the catalog service, which writes the latest quote for
// each ticker as a JSON payload under stock:<TICKER>.
const keyPrefix = "stock:"

// RedisSource reads the catalog's latest quotes out of Redis.
type RedisSource struct {
	client *redis.Client
}

func NewRedisSource(client *redis.Client) *RedisSource {
	return &RedisSource{client: client}
}

func (s *RedisSource) GetQuote(ctx context.Context, ticker string) (models.Quote, error) {
	payload, err := s.client.Get(ctx, keyPrefix+ticker).Result()
	if errors.Is(err, redis.Nil) {
		return models.Quote{}, errs.NotFound("no quote for ticker %q", ticker)
	}
	if err != nil {
		return models.Quote{}, errs.Infrastructure(err, "read quote from redis")
	}

	var quote models.Quote
	if err := json.Unmarshal([]byte(payload), &quote); err != nil {
		return models.Quote{}, errs.Infrastructure(err, "decode quote payload")
	}
	if quote.Ticker == "" {
		quote.Ticker = ticker
	}
	return quote, nil
}

var _ interfaces.PriceSource = (*RedisSource)(nil)
