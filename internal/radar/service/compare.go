package service

import (
	"math"
	"sort"

	"token-radar/internal/radar/model"
	"token-radar/pkg/utils"
)

// 对比评分权重
const (
	cmpWeightVolume     = 0.35
	cmpWeightLiquidity  = 0.25
	cmpWeightHolders    = 0.15
	cmpWeightVolatility = 0.10
	cmpWeightGrowth     = 0.15
)

func volumeScore(volume float64) float64     { return utils.Clamp(volume/1000, 0, 100) }
func liquidityScore(liq float64) float64     { return utils.Clamp(liq/1000, 0, 100) }
func holdersScore(holders int64) float64     { return utils.Clamp(float64(holders)/10, 0, 100) }
func volatilityScore(vol float64) float64    { return utils.Clamp(100-vol*100, 0, 100) }
func growthScore(growthRate float64) float64 { return utils.Clamp(growthRate*10, 0, 100) }

// ComparisonScore 加权得分，范围 [0,100]
func ComparisonScore(m model.TokenMetrics) float64 {
	score := volumeScore(m.Volume24h)*cmpWeightVolume +
		liquidityScore(m.Liquidity)*cmpWeightLiquidity +
		holdersScore(m.Holders)*cmpWeightHolders +
		volatilityScore(m.Derived.Volatility)*cmpWeightVolatility +
		growthScore(m.Derived.HolderGrowthRate)*cmpWeightGrowth
	return utils.Round(utils.Clamp(score, 0, 100), 2)
}

// Compare 生成对比行并按得分降序
func Compare(metrics []model.TokenMetrics) []model.ComparisonRow {
	rows := make([]model.ComparisonRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, model.ComparisonRow{
			Address:              m.Address,
			Symbol:               m.Symbol,
			Name:                 m.Name,
			PriceUSD:             m.PriceUSD,
			Volume24h:            m.Volume24h,
			Liquidity:            m.Liquidity,
			Holders:              m.Holders,
			MarketCap:            m.MarketCap,
			PriceChange24h:       m.PriceChange24h,
			Volatility:           m.Derived.Volatility,
			HolderGrowthRate:     m.Derived.HolderGrowthRate,
			VolumeLiquidityRatio: finite(m.VolumeLiquidityRatio()),
			Score:                ComparisonScore(m),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	return rows
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
