package service

import (
	"testing"
	"time"

	"token-radar/internal/radar/model"

	"github.com/stretchr/testify/assert"
)

func TestVolatility(t *testing.T) {
	assert.Zero(t, Volatility(nil))
	assert.Zero(t, Volatility([]model.Trade{{PriceUSD: 0}}))
	assert.Zero(t, Volatility([]model.Trade{{PriceUSD: 2}, {PriceUSD: 2}}))

	trades := []model.Trade{{PriceUSD: 8}, {PriceUSD: 10}, {PriceUSD: 5}}
	assert.InDelta(t, 0.5, Volatility(trades), 1e-9)
}

func TestHolderGrowthRate(t *testing.T) {
	assert.Equal(t, 100.0, HolderGrowthRate(100, 0))
	assert.Equal(t, 100.0, HolderGrowthRate(100, 0.5))
	assert.Equal(t, 10.0, HolderGrowthRate(100, 10))
}

func TestDerive(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ticker := model.Ticker{Holders: 240, ListingTime: now.Add(-24 * time.Hour).UnixMilli()}
	trades := []model.Trade{
		{Timestamp: now.Add(-10 * time.Minute).UnixMilli(), AmountUSD: 100, PriceUSD: 10, Type: model.TradeBuy},
		{Timestamp: now.Add(-50 * time.Minute).UnixMilli(), AmountUSD: 200, PriceUSD: 9, Type: model.TradeBuy},
		{Timestamp: now.Add(-2 * time.Hour).UnixMilli(), AmountUSD: 300, PriceUSD: 8, Type: model.TradeSell},
		{Timestamp: now.Add(-3 * time.Hour).UnixMilli(), AmountUSD: 400, PriceUSD: 10, Type: model.TradeUnknown},
	}

	d := Derive(ticker, trades, now)
	assert.Equal(t, 2, d.SwapsLastHour)
	assert.Equal(t, 250.0, d.AvgSwapSize)
	assert.InDelta(t, 0.2, d.Volatility, 1e-9)
	assert.Equal(t, 2.0, d.BuyVsSellRatio)
	assert.InDelta(t, 10.0, d.HolderGrowthRate, 1e-9)
}

func TestDeriveEdgeCases(t *testing.T) {
	now := time.Now()
	d := Derive(model.Ticker{Holders: 5}, nil, now)
	assert.Equal(t, model.Derived{HolderGrowthRate: 5}, d)

	// 没有卖单时比值等于买单数
	d = Derive(model.Ticker{}, []model.Trade{{Type: model.TradeBuy}, {Type: model.TradeBuy}, {Type: model.TradeBuy}}, now)
	assert.Equal(t, 3.0, d.BuyVsSellRatio)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, ValidateTicker(model.Ticker{Address: "0x1", PriceUSD: 1}))
	assert.Error(t, ValidateTicker(model.Ticker{}))
	assert.Error(t, ValidateTicker(model.Ticker{Address: "0x1", Volume24h: -1}))

	assert.NoError(t, ValidateTrades([]model.Trade{{Timestamp: 1, PriceUSD: 1}}))
	assert.Error(t, ValidateTrades([]model.Trade{{Timestamp: 0}}))
	assert.Error(t, ValidateTrades([]model.Trade{{Timestamp: 1, AmountUSD: -2}}))
}
