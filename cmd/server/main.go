package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/api"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/config"
	kafkaevents "github.com/sheikh-saqib/stock-trading-ledger-system/internal/events/kafka"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/executor"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/market"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/pricing"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage/memory"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.App.Env == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	var store interfaces.AccountStore
	switch cfg.Store.Driver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Store.PostgresDSN)
		if err != nil {
			logger.Fatal("open postgres", zap.Error(err))
		}
		if err := db.Ping(); err != nil {
			logger.Fatal("ping postgres", zap.Error(err))
		}
		store = postgres.NewStore(db)
	default:
		store = memory.NewStore()
	}

	var prices interfaces.PriceSource
	switch cfg.Prices.Source {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Prices.RedisAddr,
			DB:   cfg.Prices.RedisDB,
		})
		prices = pricing.NewRedisSource(client)
	default:
		prices = seedQuotes(pricing.NewMemorySource())
	}

	clock, err := market.NewClock(market.Config{
		OpenTime:     cfg.Market.OpenTime,
		CloseTime:    cfg.Market.CloseTime,
		Timezone:     cfg.Market.Timezone,
		WeekdaysOnly: cfg.Market.WeekdaysOnly,
		Holidays:     cfg.Market.Holidays,
	})
	if err != nil {
		logger.Fatal("build market clock", zap.Error(err))
	}

	var publisher interfaces.EventPublisher
	if cfg.Kafka.Enabled {
		publisher = kafkaevents.NewPublisher(cfg.Kafka.Brokers)
	}

	ledgerService := ledger.New(store)
	exec := executor.New(ledgerService, clock, prices, publisher, cfg.Kafka.Topic, logger)

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.NewHandler(exec, logger).Register(router)

	logger.Info("starting server", zap.String("port", cfg.App.Port))
	if err := router.Run(cfg.App.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// seedQuotes loads a handful of dev quotes so a memory-backed instance is
// usable out of the box.
func seedQuotes(source *pricing.MemorySource) *pricing.MemorySource {
	now := time.Now()
	for ticker, price := range map[string]string{
		"AAPL": "182.34",
		"MSFT": "411.22",
		"GOOG": "141.80",
		"TSLA": "248.50",
	} {
		p, _ := decimal.NewFromString(price)
		source.SetQuote(models.Quote{
			Ticker:    ticker,
			Price:     p,
			Open:      p,
			High:      p,
			Low:       p,
			UpdatedAt: now,
		})
	}
	return source
}
