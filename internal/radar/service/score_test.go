package service

import (
	"math"
	"strings"
	"testing"

	"token-radar/internal/radar/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVLRScore(t *testing.T) {
	assert.InDelta(t, 33.33, VLRScore(1), 1e-9)
	assert.InDelta(t, 66.66, VLRScore(2), 1e-9)
	assert.Equal(t, 100.0, VLRScore(4))
	assert.Equal(t, 0.0, VLRScore(0))

	m := model.TokenMetrics{Volume24h: 50000, Liquidity: 0}
	assert.Zero(t, m.VolumeLiquidityRatio())
}

func TestRatingBuckets(t *testing.T) {
	cases := []struct {
		score float64
		want  model.Rating
	}{
		{100, model.RatingStrongBuy},
		{82, model.RatingStrongBuy},
		{80, model.RatingStrongBuy},
		{79.99, model.RatingBuy},
		{65, model.RatingBuy},
		{50, model.RatingHold},
		{49.99, model.RatingAvoid},
		{35, model.RatingAvoid},
		{34, model.RatingStrongAvoid},
		{0, model.RatingStrongAvoid},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RatingFor(c.score), "score %v", c.score)
	}
}

func TestComparisonScore(t *testing.T) {
	// 各分项均封顶 100，波动率 0 时满分
	top := model.TokenMetrics{Volume24h: 1e6, Liquidity: 1e6, Holders: 5000, Derived: model.Derived{HolderGrowthRate: 50}}
	assert.Equal(t, 100.0, ComparisonScore(top))

	// 分项依次为 volume 50, liquidity 20, holders 30, stability 60, growth 20
	m := model.TokenMetrics{
		Volume24h: 50000,
		Liquidity: 20000,
		Holders:   300,
		Derived:   model.Derived{Volatility: 0.4, HolderGrowthRate: 2},
	}
	want := 50*0.35 + 20*0.25 + 30*0.15 + 60*0.10 + 20*0.15
	assert.InDelta(t, want, ComparisonScore(m), 0.01)
}

func TestCompareSortsDescending(t *testing.T) {
	rows := Compare([]model.TokenMetrics{
		{Token: model.Token{Symbol: "LOW"}, Volume24h: 1000},
		{Token: model.Token{Symbol: "HIGH"}, Volume24h: 90000, Liquidity: 40000},
		{Token: model.Token{Symbol: "MID"}, Volume24h: 20000},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"HIGH", "MID", "LOW"}, []string{rows[0].Symbol, rows[1].Symbol, rows[2].Symbol})
	assert.InDelta(t, 2.25, rows[0].VolumeLiquidityRatio, 1e-9)

	report := ComparisonReport(rows)
	assert.Contains(t, report, "Top pick: HIGH")
	assert.Contains(t, ComparisonReport(nil), "No tokens")
}

func TestRecommend(t *testing.T) {
	m := model.TokenMetrics{
		Token:          model.Token{Address: "0x1", Symbol: "GOOD"},
		Volume24h:      150000,
		Liquidity:      120000,
		Holders:        2000,
		PriceChange24h: 30,
		Derived:        model.Derived{Volatility: 0.05},
		Source:         model.SourceLive,
	}
	rec, err := Recommend(m)
	require.NoError(t, err)

	// volume 100, liquidity 100, holders 100, momentum 80, vlr 1.25*33.33, stability 95
	want := 100*0.20 + 100*0.20 + 100*0.15 + 80*0.15 + 1.25*33.33*0.15 + 95*0.15
	assert.InDelta(t, want, rec.Score, 0.01)
	assert.Equal(t, model.RatingStrongBuy, rec.Recommendation)
	assert.Len(t, rec.Analysis, 6)
	assert.Equal(t, 0.20, rec.Analysis[FactorVolume].Weight)
	assert.Contains(t, rec.Reasons, "deep liquidity")
	assert.Equal(t, model.SourceLive, rec.Source)

	var total float64
	for _, f := range rec.Analysis {
		total += f.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestRecommendNegativeReasons(t *testing.T) {
	rec, err := Recommend(model.TokenMetrics{PriceChange24h: -40, Derived: model.Derived{Volatility: 0.9}})
	require.NoError(t, err)
	assert.Contains(t, rec.Reasons, "weak 24h trading volume")
	assert.Contains(t, rec.Reasons, "highly volatile price action")
	assert.Contains(t, rec.Reasons, "negative price momentum")
	assert.Equal(t, model.RatingStrongAvoid, rec.Recommendation)
}

func TestRecommendNonFinite(t *testing.T) {
	rec, err := Recommend(model.TokenMetrics{Token: model.Token{Symbol: "BAD"}, Volume24h: math.Inf(1)})
	assert.Error(t, err)
	assert.Zero(t, rec.Score)
	assert.Equal(t, "BAD", rec.Symbol)

	recs := RecommendAll([]model.TokenMetrics{
		{Token: model.Token{Symbol: "BAD"}, Liquidity: math.NaN()},
		{Token: model.Token{Symbol: "OK"}, Volume24h: 50000, Liquidity: 50000},
	}, zap.NewNop())
	require.Len(t, recs, 2)
	assert.Equal(t, "OK", recs[0].Symbol)
	assert.Zero(t, recs[1].Score)
}

func TestRecommendationReport(t *testing.T) {
	recs := []model.Recommendation{
		{Symbol: "A", Score: 85, Recommendation: model.RatingStrongBuy, Reasons: []string{"deep liquidity"}},
		{Symbol: "B", Score: 40, Recommendation: model.RatingAvoid},
	}
	report := RecommendationReport(recs)
	assert.True(t, strings.HasPrefix(report, "TOKEN RECOMMENDATION REPORT"))
	assert.Contains(t, report, "- deep liquidity")
	assert.Equal(t, map[model.Rating]int{model.RatingStrongBuy: 1, model.RatingAvoid: 1}, RatingDistribution(recs))
}
