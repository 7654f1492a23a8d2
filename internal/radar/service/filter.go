package service

import (
	"sort"
	"strings"
	"time"

	"token-radar/internal/radar/model"
	"token-radar/pkg/utils"
)

// 支持的排序字段
var sortFields = map[string]func(m model.TokenMetrics) float64{
	"volume24h":      func(m model.TokenMetrics) float64 { return m.Volume24h },
	"liquidity":      func(m model.TokenMetrics) float64 { return m.Liquidity },
	"holders":        func(m model.TokenMetrics) float64 { return float64(m.Holders) },
	"priceUSD":       func(m model.TokenMetrics) float64 { return m.PriceUSD },
	"marketCap":      func(m model.TokenMetrics) float64 { return m.MarketCap },
	"priceChange24h": func(m model.TokenMetrics) float64 { return m.PriceChange24h },
	"volatility":     func(m model.TokenMetrics) float64 { return m.Derived.Volatility },
	"score":          ComparisonScore,
}

// IsEmpty 没有任何条件
func IsEmpty(f model.Filter) bool {
	return f.MinVolume == nil && f.MaxVolume == nil &&
		f.MinLiquidity == nil && f.MaxLiquidity == nil &&
		f.MinHolders == nil &&
		f.MinPriceChange == nil && f.MaxPriceChange == nil &&
		f.MaxAgeHours == nil && f.MaxVolatility == nil &&
		strings.TrimSpace(f.Keyword) == ""
}

// Match 所有已设置条件取 AND
func Match(m model.TokenMetrics, f model.Filter, now time.Time) bool {
	if f.MinVolume != nil && m.Volume24h < *f.MinVolume {
		return false
	}
	if f.MaxVolume != nil && m.Volume24h > *f.MaxVolume {
		return false
	}
	if f.MinLiquidity != nil && m.Liquidity < *f.MinLiquidity {
		return false
	}
	if f.MaxLiquidity != nil && m.Liquidity > *f.MaxLiquidity {
		return false
	}
	if f.MinHolders != nil && m.Holders < *f.MinHolders {
		return false
	}
	if f.MinPriceChange != nil && m.PriceChange24h < *f.MinPriceChange {
		return false
	}
	if f.MaxPriceChange != nil && m.PriceChange24h > *f.MaxPriceChange {
		return false
	}
	if f.MaxAgeHours != nil && (m.ListingTime <= 0 || m.AgeHours(now) > *f.MaxAgeHours) {
		return false
	}
	if f.MaxVolatility != nil && m.Derived.Volatility > *f.MaxVolatility {
		return false
	}
	if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
		if !strings.Contains(strings.ToLower(m.Symbol), kw) &&
			!strings.Contains(strings.ToLower(m.Name), kw) &&
			utils.NormalizeAddress(m.Address) != kw {
			return false
		}
	}
	return true
}

// ApplyFilter 过滤后按 sortBy 稳定排序；空条件且无排序时原样返回
func ApplyFilter(metrics []model.TokenMetrics, f model.Filter, sortBy string, ascending bool, now time.Time) []model.TokenMetrics {
	var out []model.TokenMetrics
	if IsEmpty(f) {
		out = append([]model.TokenMetrics(nil), metrics...)
	} else {
		out = make([]model.TokenMetrics, 0, len(metrics))
		for _, m := range metrics {
			if Match(m, f, now) {
				out = append(out, m)
			}
		}
	}

	key, ok := sortFields[sortBy]
	if !ok {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return key(out[i]) < key(out[j])
		}
		return key(out[i]) > key(out[j])
	})
	return out
}

// Summarize 过滤结果汇总
func Summarize(total int, matched []model.TokenMetrics) model.FilterSummary {
	s := model.FilterSummary{Total: total, Matched: len(matched)}
	var change float64
	for _, m := range matched {
		s.TotalVolume += m.Volume24h
		s.TotalLiquidity += m.Liquidity
		change += m.PriceChange24h
	}
	if len(matched) > 0 {
		s.AvgPriceChange24h = utils.Round(change/float64(len(matched)), 2)
	}
	s.TotalVolume = utils.Round(s.TotalVolume, 2)
	s.TotalLiquidity = utils.Round(s.TotalLiquidity, 2)
	return s
}
