package service

import (
	"context"
	"time"

	"token-radar/internal/radar/exchange"
	"token-radar/internal/radar/model"
)

// MarketData 上游数据源，由 exchange.Client 实现
type MarketData interface {
	TokenList(ctx context.Context) (exchange.Result[[]model.Token], error)
	Ticker(ctx context.Context, address string) (exchange.Result[model.Ticker], error)
	Trades(ctx context.Context, address string, limit int) (exchange.Result[[]model.Trade], error)
	Trending(ctx context.Context, limit int) (exchange.Result[[]model.Ticker], error)
}

var _ MarketData = (*exchange.Client)(nil)

// sleepCtx 等待 d，ctx 取消时提前返回
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
