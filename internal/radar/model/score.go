package model

import "time"

// Rating 推荐等级
type Rating string

const (
	RatingStrongBuy   Rating = "Strong Buy"
	RatingBuy         Rating = "Buy"
	RatingHold        Rating = "Hold"
	RatingAvoid       Rating = "Avoid"
	RatingStrongAvoid Rating = "Strong Avoid"
)

// FactorScore 单个因子的得分明细
type FactorScore struct {
	Value  float64 `json:"value"`  // 原始值
	Score  float64 `json:"score"`  // 0-100
	Weight float64 `json:"weight"` // 权重
}

// Recommendation 单个 token 的推荐结果
type Recommendation struct {
	Address        string                 `json:"address"`
	Symbol         string                 `json:"symbol"`
	Name           string                 `json:"name"`
	Score          float64                `json:"score"`
	Recommendation Rating                 `json:"recommendation"`
	Analysis       map[string]FactorScore `json:"analysis"`
	Reasons        []string               `json:"reasons"`
	Source         Source                 `json:"source"`
}

// ComparisonRow 横向对比用的精简投影
type ComparisonRow struct {
	Address              string  `json:"address"`
	Symbol               string  `json:"symbol"`
	Name                 string  `json:"name"`
	PriceUSD             float64 `json:"priceUSD"`
	Volume24h            float64 `json:"volume24h"`
	Liquidity            float64 `json:"liquidity"`
	Holders              int64   `json:"holders"`
	MarketCap            float64 `json:"marketCap"`
	PriceChange24h       float64 `json:"priceChange24h"`
	Volatility           float64 `json:"volatility"`
	HolderGrowthRate     float64 `json:"holderGrowthRate"`
	VolumeLiquidityRatio float64 `json:"volumeLiquidityRatio"`
	Score                float64 `json:"score"`
}

// TrendingOrigin 热门候选来自哪一级数据源
type TrendingOrigin string

const (
	OriginAPI     TrendingOrigin = "api"
	OriginScrape  TrendingOrigin = "scrape"
	OriginKeyword TrendingOrigin = "keyword"
	OriginStatic  TrendingOrigin = "static"
)

// TrendingToken 热门 meme 候选
type TrendingToken struct {
	Token
	PriceUSD       float64        `json:"priceUSD"`
	Volume24h      float64        `json:"volume24h"`
	Liquidity      float64        `json:"liquidity"`
	PriceChange24h float64        `json:"priceChange24h"`
	AgeInDays      float64        `json:"ageInDays"`
	TrendingScore  float64        `json:"trendingScore"`
	Origin         TrendingOrigin `json:"origin"`
}

// Filter 过滤条件，nil 字段不参与过滤
type Filter struct {
	MinVolume      *float64 `json:"minVolume,omitempty"`
	MaxVolume      *float64 `json:"maxVolume,omitempty"`
	MinLiquidity   *float64 `json:"minLiquidity,omitempty"`
	MaxLiquidity   *float64 `json:"maxLiquidity,omitempty"`
	MinHolders     *int64   `json:"minHolders,omitempty"`
	MinPriceChange *float64 `json:"minPriceChange,omitempty"`
	MaxPriceChange *float64 `json:"maxPriceChange,omitempty"`
	MaxAgeHours    *float64 `json:"maxAgeHours,omitempty"`
	MaxVolatility  *float64 `json:"maxVolatility,omitempty"`
	Keyword        string   `json:"keyword,omitempty"`
}

// FilterSummary 过滤结果汇总
type FilterSummary struct {
	Total             int     `json:"total"`
	Matched           int     `json:"matched"`
	TotalVolume       float64 `json:"totalVolume"`
	TotalLiquidity    float64 `json:"totalLiquidity"`
	AvgPriceChange24h float64 `json:"avgPriceChange24h"`
}

// Dashboard 首页聚合数据
type Dashboard struct {
	NewTokens       []Token          `json:"newTokens"`
	Trending        []TrendingToken  `json:"trending"`
	Recommendations []Recommendation `json:"recommendations"`
	Comparison      []ComparisonRow  `json:"comparison"`
	Summary         DashboardSummary `json:"summary"`
	Source          Source           `json:"source"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

type DashboardSummary struct {
	NewTokenCount      int            `json:"newTokenCount"`
	TrendingCount      int            `json:"trendingCount"`
	TrackedTokens      int            `json:"trackedTokens"`
	TotalVolume24h     float64        `json:"totalVolume24h"`
	TotalLiquidity     float64        `json:"totalLiquidity"`
	AvgScore           float64        `json:"avgScore"`
	RatingDistribution map[Rating]int `json:"ratingDistribution"`
}
