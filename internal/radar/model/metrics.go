package model

import "time"

// TradeType 成交方向
type TradeType string

const (
	TradeBuy     TradeType = "buy"
	TradeSell    TradeType = "sell"
	TradeUnknown TradeType = "unknown"
)

// ParseTradeType 兼容上游 buy/sell/b/s 等写法
func ParseTradeType(s string) TradeType {
	switch s {
	case "buy", "BUY", "Buy", "b", "1":
		return TradeBuy
	case "sell", "SELL", "Sell", "s", "2":
		return TradeSell
	default:
		return TradeUnknown
	}
}

// Trade 单笔成交（swap）
type Trade struct {
	TxHash    string    `json:"txHash"`
	Timestamp int64     `json:"timestamp"` // 毫秒
	Token     string    `json:"token"`
	Amount    float64   `json:"amount"`
	AmountUSD float64   `json:"amountUSD"`
	PriceUSD  float64   `json:"priceUSD"`
	Type      TradeType `json:"type"`
	Sender    string    `json:"sender"`
}

// Ticker 上游行情快照，已完成数字解析
type Ticker struct {
	Address        string  `json:"address"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	PriceUSD       float64 `json:"priceUSD"`
	Volume24h      float64 `json:"volume24h"`
	Liquidity      float64 `json:"liquidity"`
	MarketCap      float64 `json:"marketCap"`
	Holders        int64   `json:"holders"`
	TotalSupply    float64 `json:"totalSupply"`
	PriceChange1h  float64 `json:"priceChange1h"`
	PriceChange24h float64 `json:"priceChange24h"`
	ListingTime    int64   `json:"listingTime"` // 毫秒
	Timestamp      int64   `json:"timestamp"`
}

// Derived 基于最近一批成交计算的派生指标
type Derived struct {
	SwapsLastHour    int     `json:"swapsLastHour"`
	AvgSwapSize      float64 `json:"avgSwapSize"`
	Volatility       float64 `json:"volatility"`
	HolderGrowthRate float64 `json:"holderGrowthRate"`
	BuyVsSellRatio   float64 `json:"buyVsSellRatio"`
}

// TokenMetrics token 详细指标
type TokenMetrics struct {
	Token
	Liquidity      float64   `json:"liquidity"`
	Volume24h      float64   `json:"volume24h"`
	PriceUSD       float64   `json:"priceUSD"`
	Holders        int64     `json:"holders"`
	MarketCap      float64   `json:"marketCap"`
	TotalSupply    float64   `json:"totalSupply"`
	PriceChange1h  float64   `json:"priceChange1h"`
	PriceChange24h float64   `json:"priceChange24h"`
	Derived        Derived   `json:"derived"`
	Source         Source    `json:"source"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AgeHours 距上线的小时数，未知上线时间返回 0
func (m TokenMetrics) AgeHours(now time.Time) float64 {
	if m.ListingTime <= 0 {
		return 0
	}
	h := now.Sub(time.UnixMilli(m.ListingTime)).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// VolumeLiquidityRatio volume24h / liquidity，流动性为 0 时返回 0
func (m TokenMetrics) VolumeLiquidityRatio() float64 {
	if m.Liquidity <= 0 {
		return 0
	}
	return m.Volume24h / m.Liquidity
}
