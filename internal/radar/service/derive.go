package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"token-radar/internal/radar/model"
	"token-radar/pkg/utils"
)

// Volatility (最高成交价 - 最低成交价) / 最高成交价，无成交或最高价为 0 时为 0
func Volatility(trades []model.Trade) float64 {
	var lo, hi float64
	first := true
	for _, t := range trades {
		if t.PriceUSD <= 0 || math.IsNaN(t.PriceUSD) || math.IsInf(t.PriceUSD, 0) {
			continue
		}
		if first {
			lo, hi, first = t.PriceUSD, t.PriceUSD, false
			continue
		}
		lo = math.Min(lo, t.PriceUSD)
		hi = math.Max(hi, t.PriceUSD)
	}
	if hi == 0 {
		return 0
	}
	return (hi - lo) / hi
}

// HolderGrowthRate holders / max(1, 上线小时数)
func HolderGrowthRate(holders int64, ageHours float64) float64 {
	return float64(holders) / math.Max(1, ageHours)
}

// Derive 根据行情和最近一批成交计算派生指标
func Derive(ticker model.Ticker, trades []model.Trade, now time.Time) model.Derived {
	hourAgo := now.Add(-time.Hour).UnixMilli()

	var (
		swaps  int
		sumUSD float64
		buys   int
		sells  int
	)
	for _, t := range trades {
		if t.Timestamp >= hourAgo {
			swaps++
		}
		sumUSD += t.AmountUSD
		switch t.Type {
		case model.TradeBuy:
			buys++
		case model.TradeSell:
			sells++
		}
	}

	d := model.Derived{
		SwapsLastHour: swaps,
		Volatility:    Volatility(trades),
	}
	if len(trades) > 0 {
		d.AvgSwapSize = sumUSD / float64(len(trades))
	}

	switch {
	case sells > 0:
		d.BuyVsSellRatio = float64(buys) / float64(sells)
	default:
		d.BuyVsSellRatio = float64(buys)
	}

	var ageHours float64
	if ticker.ListingTime > 0 {
		ageHours = now.Sub(utils.ToTime(ticker.ListingTime)).Hours()
	}
	d.HolderGrowthRate = HolderGrowthRate(ticker.Holders, ageHours)
	return d
}

var (
	errEmptyAddress = errors.New("empty token address")
	errBadNumber    = errors.New("non-finite or negative value")
)

// ValidateTicker 校验失败只用于记录日志，数据照常使用
func ValidateTicker(t model.Ticker) error {
	if t.Address == "" {
		return errEmptyAddress
	}
	for name, v := range map[string]float64{
		"priceUSD":  t.PriceUSD,
		"volume24h": t.Volume24h,
		"liquidity": t.Liquidity,
		"marketCap": t.MarketCap,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s=%v: %w", name, v, errBadNumber)
		}
	}
	if t.Holders < 0 {
		return fmt.Errorf("holders=%d: %w", t.Holders, errBadNumber)
	}
	return nil
}

// ValidateTrades 返回第一笔不合法成交的错误
func ValidateTrades(trades []model.Trade) error {
	for i, t := range trades {
		if t.PriceUSD < 0 || t.AmountUSD < 0 {
			return fmt.Errorf("trade %d (%s): %w", i, t.TxHash, errBadNumber)
		}
		if t.Timestamp <= 0 {
			return fmt.Errorf("trade %d (%s): missing timestamp", i, t.TxHash)
		}
	}
	return nil
}
