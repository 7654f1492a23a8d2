package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/exchange"
	"token-radar/internal/radar/model"
	"token-radar/internal/radar/store"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var ErrTokenNotFound = errors.New("token not found")

// MetricsService 行情 + 最近成交 -> TokenMetrics
type MetricsService struct {
	cfg    config.MetricsConfig
	market MarketData
	store  *store.FileStore
	tl     *zap.Logger
	now    func() time.Time
}

func NewMetricsService(cfg config.MetricsConfig, market MarketData, fs *store.FileStore, tl *zap.Logger) *MetricsService {
	return &MetricsService{cfg: cfg, market: market, store: fs, tl: tl, now: time.Now}
}

// Fetch 单个 token 的完整指标
func (s *MetricsService) Fetch(ctx context.Context, ref model.TokenRef) (model.TokenMetrics, error) {
	ticker, err := s.market.Ticker(ctx, ref.Address)
	if errors.Is(err, exchange.ErrNotFound) {
		return model.TokenMetrics{}, fmt.Errorf("%s: %w", ref.Address, ErrTokenNotFound)
	}
	if err != nil {
		return model.TokenMetrics{}, fmt.Errorf("fetch ticker %s: %w", ref.Address, err)
	}
	if err := ValidateTicker(ticker.Data); err != nil {
		s.tl.Warn("ticker validation failed", zap.String("address", ref.Address), zap.Error(err))
	}

	trades, err := s.market.Trades(ctx, ref.Address, s.cfg.TradeLimit)
	if err != nil {
		return model.TokenMetrics{}, fmt.Errorf("fetch trades %s: %w", ref.Address, err)
	}
	if err := ValidateTrades(trades.Data); err != nil {
		s.tl.Warn("trades validation failed", zap.String("address", ref.Address), zap.Error(err))
	}

	now := s.now()
	t := ticker.Data
	m := model.TokenMetrics{
		Token: model.Token{
			Address:     firstNonEmpty(t.Address, ref.Address),
			Symbol:      firstNonEmpty(t.Symbol, ref.Symbol),
			Name:        firstNonEmpty(t.Name, ref.Name),
			ListingTime: t.ListingTime,
		},
		Liquidity:      t.Liquidity,
		Volume24h:      t.Volume24h,
		PriceUSD:       t.PriceUSD,
		Holders:        t.Holders,
		MarketCap:      t.MarketCap,
		TotalSupply:    t.TotalSupply,
		PriceChange1h:  t.PriceChange1h,
		PriceChange24h: t.PriceChange24h,
		Derived:        Derive(t, trades.Data, now),
		Source:         ticker.Source.Merge(trades.Source),
		UpdatedAt:      now,
	}
	return m, nil
}

// FetchSequential 逐个抓取，每个之间固定间隔；单个失败跳过
func (s *MetricsService) FetchSequential(ctx context.Context, refs []model.TokenRef) ([]model.TokenMetrics, error) {
	out := make([]model.TokenMetrics, 0, len(refs))
	for i, ref := range refs {
		if i > 0 {
			if err := sleepCtx(ctx, s.cfg.ItemDelay); err != nil {
				return out, err
			}
		}
		m, err := s.Fetch(ctx, ref)
		if err != nil {
			s.tl.Warn("fetch metrics failed, skip", zap.String("address", ref.Address), zap.Error(err))
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// FetchBatched 按 batch_size 分组并发抓取，组间固定间隔；结果保持输入顺序
func (s *MetricsService) FetchBatched(ctx context.Context, refs []model.TokenRef) ([]model.TokenMetrics, error) {
	size := s.cfg.BatchSize
	if size <= 0 {
		size = 5
	}

	results := make([]*model.TokenMetrics, len(refs))
	for start := 0; start < len(refs); start += size {
		if start > 0 {
			if err := sleepCtx(ctx, s.cfg.BatchDelay); err != nil {
				return collect(results), err
			}
		}
		end := min(start+size, len(refs))

		var mu sync.Mutex
		p := pool.New().WithContext(ctx).WithMaxGoroutines(size)
		for i := start; i < end; i++ {
			p.Go(func(ctx context.Context) error {
				m, err := s.Fetch(ctx, refs[i])
				if err != nil {
					// 单个失败不影响同组其他 token
					s.tl.Warn("fetch metrics failed, skip", zap.String("address", refs[i].Address), zap.Error(err))
					return nil
				}
				mu.Lock()
				results[i] = &m
				mu.Unlock()
				return nil
			})
		}
		_ = p.Wait()
	}
	return collect(results), nil
}

// Refresh 批量抓取并保存到 token_metrics.json
func (s *MetricsService) Refresh(ctx context.Context, refs []model.TokenRef) ([]model.TokenMetrics, error) {
	if s.cfg.MaxTokens > 0 && len(refs) > s.cfg.MaxTokens {
		refs = refs[:s.cfg.MaxTokens]
	}
	metrics, err := s.FetchBatched(ctx, refs)
	if err != nil {
		return metrics, err
	}
	_ = s.store.SaveJSON(store.TokenMetricsFile, metrics)
	return metrics, nil
}

func collect(results []*model.TokenMetrics) []model.TokenMetrics {
	out := make([]model.TokenMetrics, 0, len(results))
	for _, m := range results {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
