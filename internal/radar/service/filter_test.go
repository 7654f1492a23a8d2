package service

import (
	"testing"
	"time"

	"token-radar/internal/radar/model"

	"github.com/stretchr/testify/assert"
)

func filterFixture(now time.Time) []model.TokenMetrics {
	return []model.TokenMetrics{
		{Token: model.Token{Address: "0xA", Symbol: "PEPE", Name: "Pepe", ListingTime: now.Add(-2 * time.Hour).UnixMilli()}, Volume24h: 5000, Liquidity: 20000, Holders: 100, PriceChange24h: 12},
		{Token: model.Token{Address: "0xB", Symbol: "WETH", Name: "Wrapped Ether", ListingTime: now.Add(-500 * time.Hour).UnixMilli()}, Volume24h: 90000, Liquidity: 800000, Holders: 9000, PriceChange24h: -1},
		{Token: model.Token{Address: "0xC", Symbol: "DOGE2", Name: "Doge Two"}, Volume24h: 300, Liquidity: 1000, Holders: 12, PriceChange24h: 40, Derived: model.Derived{Volatility: 0.6}},
	}
}

func symbols(ms []model.TokenMetrics) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Symbol)
	}
	return out
}

func TestEmptyFilterIsIdentity(t *testing.T) {
	now := time.Now()
	in := filterFixture(now)
	out := ApplyFilter(in, model.Filter{}, "", false, now)
	assert.Equal(t, in, out)

	out = ApplyFilter(in, model.Filter{}, "unknownField", true, now)
	assert.Equal(t, in, out)
}

func TestFilterComposition(t *testing.T) {
	now := time.Now()
	in := filterFixture(now)

	minVol := model.Filter{MinVolume: ptr(1000.0)}
	maxLiq := model.Filter{MaxLiquidity: ptr(100000.0)}
	both := model.Filter{MinVolume: ptr(1000.0), MaxLiquidity: ptr(100000.0)}

	assert.Equal(t, []string{"PEPE", "WETH"}, symbols(ApplyFilter(in, minVol, "", false, now)))
	assert.Equal(t, []string{"PEPE", "DOGE2"}, symbols(ApplyFilter(in, maxLiq, "", false, now)))

	// 组合条件等价于依次应用
	sequential := ApplyFilter(ApplyFilter(in, minVol, "", false, now), maxLiq, "", false, now)
	assert.Equal(t, sequential, ApplyFilter(in, both, "", false, now))
	assert.Equal(t, []string{"PEPE"}, symbols(sequential))

	both = model.Filter{MinVolume: ptr(5000.0), MinLiquidity: ptr(1000.0)}
	for _, m := range ApplyFilter(in, both, "", false, now) {
		assert.GreaterOrEqual(t, m.Volume24h, 5000.0)
		assert.GreaterOrEqual(t, m.Liquidity, 1000.0)
	}
	assert.Equal(t, []string{"PEPE", "WETH"}, symbols(ApplyFilter(in, both, "", false, now)))
}

func TestFilterBounds(t *testing.T) {
	now := time.Now()
	in := filterFixture(now)

	assert.Equal(t, []string{"WETH"}, symbols(ApplyFilter(in, model.Filter{MinHolders: ptr(int64(1000))}, "", false, now)))
	assert.Equal(t, []string{"PEPE", "DOGE2"}, symbols(ApplyFilter(in, model.Filter{MinPriceChange: ptr(0.0)}, "", false, now)))
	assert.Equal(t, []string{"PEPE", "WETH"}, symbols(ApplyFilter(in, model.Filter{MaxPriceChange: ptr(20.0)}, "", false, now)))
	// 上线时间未知的不满足 maxAgeHours
	assert.Equal(t, []string{"PEPE"}, symbols(ApplyFilter(in, model.Filter{MaxAgeHours: ptr(24.0)}, "", false, now)))
	assert.Equal(t, []string{"PEPE", "WETH"}, symbols(ApplyFilter(in, model.Filter{MaxVolatility: ptr(0.5)}, "", false, now)))
	assert.Equal(t, []string{"DOGE2"}, symbols(ApplyFilter(in, model.Filter{Keyword: "doge"}, "", false, now)))
	assert.Equal(t, []string{"WETH"}, symbols(ApplyFilter(in, model.Filter{Keyword: "0xb"}, "", false, now)))
}

func TestFilterSort(t *testing.T) {
	now := time.Now()
	in := filterFixture(now)

	assert.Equal(t, []string{"WETH", "PEPE", "DOGE2"}, symbols(ApplyFilter(in, model.Filter{}, "volume24h", false, now)))
	assert.Equal(t, []string{"DOGE2", "PEPE", "WETH"}, symbols(ApplyFilter(in, model.Filter{}, "holders", true, now)))
	assert.Equal(t, []string{"DOGE2", "PEPE", "WETH"}, symbols(ApplyFilter(in, model.Filter{}, "priceChange24h", false, now)))
	// 排序不修改输入
	assert.Equal(t, "PEPE", in[0].Symbol)
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	in := filterFixture(now)
	matched := ApplyFilter(in, model.Filter{MinVolume: ptr(1000.0)}, "", false, now)

	s := Summarize(len(in), matched)
	assert.Equal(t, model.FilterSummary{
		Total:             3,
		Matched:           2,
		TotalVolume:       95000,
		TotalLiquidity:    820000,
		AvgPriceChange24h: 5.5,
	}, s)

	assert.Equal(t, model.FilterSummary{Total: 3}, Summarize(3, nil))
}
