package service

import (
	"fmt"
	"math"
	"sort"

	"token-radar/internal/radar/model"
	"token-radar/pkg/utils"

	"go.uber.org/zap"
)

// 推荐因子
const (
	FactorVolume    = "volume"
	FactorLiquidity = "liquidity"
	FactorHolders   = "holders"
	FactorMomentum  = "momentum"
	FactorVLR       = "volumeLiquidityRatio"
	FactorStability = "stability"
)

var recommendWeights = map[string]float64{
	FactorVolume:    0.20,
	FactorLiquidity: 0.20,
	FactorHolders:   0.15,
	FactorMomentum:  0.15,
	FactorVLR:       0.15,
	FactorStability: 0.15,
}

// 固定顺序，保证 reasons 输出稳定
var factorOrder = []string{FactorVolume, FactorLiquidity, FactorHolders, FactorMomentum, FactorVLR, FactorStability}

var reasonText = map[string][2]string{
	FactorVolume:    {"strong 24h trading volume", "weak 24h trading volume"},
	FactorLiquidity: {"deep liquidity", "thin liquidity"},
	FactorHolders:   {"broad holder base", "few holders"},
	FactorMomentum:  {"positive price momentum", "negative price momentum"},
	FactorVLR:       {"healthy volume/liquidity turnover", "low volume relative to liquidity"},
	FactorStability: {"stable price action", "highly volatile price action"},
}

const (
	reasonPositive = 70.0
	reasonNegative = 30.0
)

// VLRScore min(100, ratio·33.33)
func VLRScore(ratio float64) float64 {
	return utils.Clamp(ratio*33.33, 0, 100)
}

func momentumScore(priceChange24h float64) float64 {
	return utils.Clamp(50+priceChange24h, 0, 100)
}

// RatingFor 分数分档
func RatingFor(score float64) model.Rating {
	switch {
	case score >= 80:
		return model.RatingStrongBuy
	case score >= 65:
		return model.RatingBuy
	case score >= 50:
		return model.RatingHold
	case score >= 35:
		return model.RatingAvoid
	default:
		return model.RatingStrongAvoid
	}
}

func hasNonFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// Recommend 六因子加权评分；输入含 NaN/Inf 时返回零值结果
func Recommend(m model.TokenMetrics) (model.Recommendation, error) {
	rec := model.Recommendation{
		Address:  m.Address,
		Symbol:   m.Symbol,
		Name:     m.Name,
		Analysis: map[string]model.FactorScore{},
		Reasons:  []string{},
		Source:   m.Source,
	}
	if hasNonFinite(m.Volume24h, m.Liquidity, m.PriceChange24h, m.Derived.Volatility) {
		rec.Recommendation = RatingFor(0)
		return rec, fmt.Errorf("recommend %s: non-finite input", m.Address)
	}

	vlr := m.VolumeLiquidityRatio()
	raw := map[string][2]float64{
		FactorVolume:    {m.Volume24h, volumeScore(m.Volume24h)},
		FactorLiquidity: {m.Liquidity, liquidityScore(m.Liquidity)},
		FactorHolders:   {float64(m.Holders), holdersScore(m.Holders)},
		FactorMomentum:  {m.PriceChange24h, momentumScore(m.PriceChange24h)},
		FactorVLR:       {vlr, VLRScore(vlr)},
		FactorStability: {m.Derived.Volatility, volatilityScore(m.Derived.Volatility)},
	}

	var total float64
	for _, name := range factorOrder {
		v := raw[name]
		w := recommendWeights[name]
		sub := utils.Round(v[1], 2)
		rec.Analysis[name] = model.FactorScore{Value: utils.Round(v[0], 6), Score: sub, Weight: w}
		total += v[1] * w

		switch {
		case sub >= reasonPositive:
			rec.Reasons = append(rec.Reasons, reasonText[name][0])
		case sub <= reasonNegative:
			rec.Reasons = append(rec.Reasons, reasonText[name][1])
		}
	}

	rec.Score = utils.Round(utils.Clamp(total, 0, 100), 2)
	rec.Recommendation = RatingFor(rec.Score)
	return rec, nil
}

// RecommendAll 逐个评分，失败的记录日志并保留零值结果；按分数降序
func RecommendAll(metrics []model.TokenMetrics, tl *zap.Logger) []model.Recommendation {
	out := make([]model.Recommendation, 0, len(metrics))
	for _, m := range metrics {
		rec, err := Recommend(m)
		if err != nil {
			tl.Warn("recommendation failed", zap.String("address", m.Address), zap.Error(err))
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
