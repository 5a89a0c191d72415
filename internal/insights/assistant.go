// Package insights asks the text-generation service for listing descriptions
// and yearly sales summaries. Every failure degrades to a fixed message so
// callers always get text to show.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"api_tractors/internal/integrations/textgen"
	"api_tractors/internal/inventory"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DescriptionFailed = "Failed to generate description. Please try again."
	SummaryFailed     = "Failed to generate yearly summary. The AI model might be unavailable."
	NoTransactions    = "No transactions available to generate a summary."

	DefaultDescriptionModel = "gemini-2.5-flash"
	DefaultSummaryModel     = "gemini-2.5-pro"

	rateWindow = time.Minute
)

// Cache keeps generated text between identical prompts.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Limiter counts calls per key in a time window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type Config struct {
	DescriptionModel string
	SummaryModel     string
	Timeout          time.Duration
	CacheTTL         time.Duration
	RatePerMinute    int64
}

type Assistant struct {
	gen     textgen.Generator
	cfg     Config
	cache   Cache
	limiter Limiter
	logger  *zap.Logger
}

type Option func(*Assistant)

func WithCache(c Cache) Option {
	return func(a *Assistant) { a.cache = c }
}

func WithLimiter(l Limiter) Option {
	return func(a *Assistant) { a.limiter = l }
}

func NewAssistant(gen textgen.Generator, cfg Config, logger *zap.Logger, opts ...Option) *Assistant {
	if cfg.DescriptionModel == "" {
		cfg.DescriptionModel = DefaultDescriptionModel
	}
	if cfg.SummaryModel == "" {
		cfg.SummaryModel = DefaultSummaryModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assistant{gen: gen, cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TractorDetails formats the free-form details string sent with a
// description request.
func TractorDetails(name, model string, year int) string {
	return fmt.Sprintf("Name: %s, Model: %s, Year: %d", name, model, year)
}

// DescribeTractor returns a short sales description for details.
func (a *Assistant) DescribeTractor(ctx context.Context, details string) string {
	prompt := fmt.Sprintf("Generate a compelling, professional sales description for a tractor with these details: %s. "+
		"Focus on durability, performance, and value for a farmer or contractor. Keep it to 2-3 concise sentences.", details)

	text, err := a.generate(ctx, a.cfg.DescriptionModel, prompt)
	if err != nil {
		a.logger.Warn("describe tractor failed", zap.String("details", details), zap.Error(err))
		return DescriptionFailed
	}
	return text
}

type saleLine struct {
	TractorName   string          `json:"tractorName"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Profit        decimal.Decimal `json:"profit"`
	Date          string          `json:"date"`
}

// SummarizeYear returns a markdown summary of the given sales. With no
// sales it answers NoTransactions without calling the service.
func (a *Assistant) SummarizeYear(ctx context.Context, txs []inventory.Transaction) string {
	if len(txs) == 0 {
		return NoTransactions
	}

	lines := make([]saleLine, 0, len(txs))
	for _, tx := range txs {
		lines = append(lines, saleLine{
			TractorName:   tx.Tractor.Name,
			SalePrice:     tx.SalePrice,
			PurchasePrice: tx.Tractor.PurchasePrice,
			Profit:        tx.SalePrice.Sub(tx.Tractor.PurchasePrice),
			Date:          tx.Date,
		})
	}
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		a.logger.Error("encode sales for summary", zap.Error(err))
		return SummaryFailed
	}

	prompt := "Analyze the following JSON data of tractor sales for the year. " +
		"Provide a concise, insightful summary of the business performance in markdown format.\n" +
		"Mention:\n" +
		"1. Total revenue (sum of salePrice).\n" +
		"2. Total profit (sum of profit).\n" +
		"3. Number of units sold.\n" +
		"4. The most profitable tractor model.\n" +
		"5. Any noticeable trends (e.g., sales peaks in certain months).\n\n" +
		"Data:\n" + string(data) + "\n"

	text, err := a.generate(ctx, a.cfg.SummaryModel, prompt)
	if err != nil {
		a.logger.Warn("summarize year failed", zap.Int("transactions", len(txs)), zap.Error(err))
		return SummaryFailed
	}
	return text
}

func (a *Assistant) generate(ctx context.Context, model, prompt string) (string, error) {
	key := cacheKey(model, prompt)
	if a.cache != nil {
		if text, ok, err := a.cache.Get(ctx, key); err != nil {
			a.logger.Warn("textgen cache get", zap.Error(err))
		} else if ok {
			return text, nil
		}
	}

	if a.limiter != nil && a.cfg.RatePerMinute > 0 {
		allowed, n, err := a.limiter.Allow(ctx, model, a.cfg.RatePerMinute, rateWindow)
		if err != nil {
			a.logger.Warn("textgen rate limiter", zap.Error(err))
		} else if !allowed {
			return "", fmt.Errorf("%w: rate limit for %s exceeded (%d calls)", textgen.ErrRemoteService, model, n)
		}
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	text, err := a.gen.Generate(ctx, model, prompt)
	if err != nil {
		return "", err
	}

	if a.cache != nil && a.cfg.CacheTTL > 0 {
		if err := a.cache.Set(ctx, key, text, a.cfg.CacheTTL); err != nil {
			a.logger.Warn("textgen cache set", zap.Error(err))
		}
	}
	return text, nil
}

func cacheKey(model, prompt string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(prompt))
	return fmt.Sprintf("%s:%x", model, h.Sum64())
}
