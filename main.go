package main

import (
	"context"
	"fmt"
	"time"

	"api_tractors/api"
	"api_tractors/config"
	"api_tractors/internal/cache/rediscache"
	"api_tractors/internal/insights"
	"api_tractors/internal/integrations/textgen"
	"api_tractors/internal/integrations/textgen/fake"
	"api_tractors/internal/integrations/textgen/gemini"
	"api_tractors/internal/inventory"
	"api_tractors/internal/invoice"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ledger := inventory.NewService(inventory.NewLocalStorage(), logger,
		inventory.WithImageURLTemplate(cfg.Ledger.ImageURLTemplate))
	if cfg.Ledger.SeedEnabled() {
		if err := inventory.Seed(ledger); err != nil {
			logger.Fatal("failed to seed ledger", zap.Error(err))
		}
	}

	timeout := time.Duration(cfg.TextGen.TimeoutSeconds) * time.Second
	var gen textgen.Generator
	switch cfg.TextGen.Provider {
	case "gemini":
		if cfg.TextGen.APIKey == "" {
			logger.Fatal("textgen provider gemini needs an API key (API_KEY env or textgen.api_key)")
		}
		client := gemini.New(cfg.TextGen.BaseURL, cfg.TextGen.APIKey, timeout, logger)
		defer client.Close()
		gen = client
	case "fake":
		gen = fake.New()
	default:
		logger.Fatal("unknown textgen provider", zap.String("provider", cfg.TextGen.Provider))
	}

	var opts []insights.Option
	if cfg.Redis.Enabled() {
		rdb := rediscache.NewClient(cfg.Redis.Addr())
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rediscache.Ping(ctx, rdb)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		} else {
			opts = append(opts,
				insights.WithCache(rediscache.New(rdb, "textgen:")),
				insights.WithLimiter(rediscache.NewRateLimiter(rdb, "textgen:rl:")),
			)
		}
	}

	assistant := insights.NewAssistant(gen, insights.Config{
		DescriptionModel: cfg.TextGen.DescriptionModel,
		SummaryModel:     cfg.TextGen.SummaryModel,
		Timeout:          timeout,
		CacheTTL:         time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second,
		RatePerMinute:    int64(cfg.TextGen.RateLimitPerMinute),
	}, logger, opts...)

	renderer, err := invoice.NewRenderer()
	if err != nil {
		logger.Fatal("failed to load invoice template", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	api.InitRoutes(r, api.Deps{
		Ledger:    ledger,
		Assistant: assistant,
		Invoices:  renderer,
		Dealership: invoice.Dealership{
			Name:           cfg.Dealership.Name,
			Address:        cfg.Dealership.Address,
			CurrencySymbol: cfg.Dealership.CurrencySymbol,
		},
		Logger: logger,
	})

	logger.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("textgen", cfg.TextGen.Provider),
		zap.Bool("redis", cfg.Redis.Enabled()),
	)
	if err := r.Run(cfg.Server.Addr); err != nil {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}
}
