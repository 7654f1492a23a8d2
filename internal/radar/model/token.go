package model

import "time"

// Source 标记数据来自真实上游还是合成数据
type Source string

const (
	SourceLive      Source = "live"
	SourceSynthetic Source = "synthetic"
)

// Merge 任一来源为合成数据时结果视为合成数据
func (s Source) Merge(other Source) Source {
	if s == SourceSynthetic || other == SourceSynthetic {
		return SourceSynthetic
	}
	if s == "" {
		return other
	}
	return s
}

// Token 基础 token 信息，身份 key 为小写地址
type Token struct {
	Address     string `json:"address"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Decimals    int    `json:"decimals"`
	ChainID     string `json:"chainId"`
	LogoURL     string `json:"logoUrl,omitempty"`
	ListingTime int64  `json:"listingTime,omitempty"` // 毫秒
}

// TokenRef 请求体中引用 token 的最小信息
type TokenRef struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol,omitempty"`
	Name    string `json:"name,omitempty"`
}

func (t Token) Ref() TokenRef {
	return TokenRef{Address: t.Address, Symbol: t.Symbol, Name: t.Name}
}

// DiscoveryResult 一次发现任务的结果
type DiscoveryResult struct {
	NewTokens      []Token   `json:"newTokens"`
	TotalTokens    int       `json:"totalTokens"`
	PreviousTokens int       `json:"previousTokens"`
	Source         Source    `json:"source"`
	DiscoveredAt   time.Time `json:"discoveredAt"`
}
