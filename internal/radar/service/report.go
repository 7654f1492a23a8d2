package service

import (
	"fmt"
	"strings"

	"token-radar/internal/radar/model"
)

// ComparisonReport 对比结果的文本报告
func ComparisonReport(rows []model.ComparisonRow) string {
	var b strings.Builder
	b.WriteString("TOKEN COMPARISON REPORT\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")
	if len(rows) == 0 {
		b.WriteString("No tokens to compare.\n")
		return b.String()
	}

	for i, r := range rows {
		fmt.Fprintf(&b, "%d. %s (%s) score %.2f\n", i+1, r.Symbol, r.Name, r.Score)
		fmt.Fprintf(&b, "   price $%.8f | volume24h $%.2f | liquidity $%.2f | holders %d\n",
			r.PriceUSD, r.Volume24h, r.Liquidity, r.Holders)
		fmt.Fprintf(&b, "   change24h %.2f%% | volatility %.4f | holder growth %.2f/h | vol/liq %.2f\n",
			r.PriceChange24h, r.Volatility, r.HolderGrowthRate, r.VolumeLiquidityRatio)
	}

	best := rows[0]
	fmt.Fprintf(&b, "\nTop pick: %s with score %.2f\n", best.Symbol, best.Score)
	return b.String()
}

// RecommendationReport 推荐结果的文本报告，按等级分组
func RecommendationReport(recs []model.Recommendation) string {
	var b strings.Builder
	b.WriteString("TOKEN RECOMMENDATION REPORT\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")
	if len(recs) == 0 {
		b.WriteString("No tokens analyzed.\n")
		return b.String()
	}

	dist := RatingDistribution(recs)
	for _, rating := range []model.Rating{model.RatingStrongBuy, model.RatingBuy, model.RatingHold, model.RatingAvoid, model.RatingStrongAvoid} {
		fmt.Fprintf(&b, "%-13s %d\n", rating+":", dist[rating])
	}
	b.WriteString("\n")

	for i, r := range recs {
		fmt.Fprintf(&b, "%d. %s (%s) %.2f -> %s\n", i+1, r.Symbol, r.Name, r.Score, r.Recommendation)
		for _, reason := range r.Reasons {
			fmt.Fprintf(&b, "   - %s\n", reason)
		}
	}
	return b.String()
}

// RatingDistribution 各等级数量
func RatingDistribution(recs []model.Recommendation) map[model.Rating]int {
	dist := map[model.Rating]int{}
	for _, r := range recs {
		dist[r.Recommendation]++
	}
	return dist
}
