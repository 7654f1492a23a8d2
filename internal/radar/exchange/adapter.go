package exchange

import (
	"fmt"
	"strconv"
)

// Kind 逻辑接口类型，与具体上游路径解耦
type Kind string

const (
	KindTokenList Kind = "token_list"
	KindTicker    Kind = "ticker"
	KindTrades    Kind = "trades"
	KindTrending  Kind = "trending"
)

// Params 逻辑请求参数，由 Adapter 翻译成上游参数名
type Params struct {
	Address string
	Limit   int
}

// Adapter 把逻辑接口映射为上游路径和参数
type Adapter interface {
	Name() string
	Path(kind Kind) (string, error)
	Query(kind Kind, chainID string, p Params) map[string]string
}

type pathAdapter struct {
	name       string
	paths      map[Kind]string
	chainKey   string
	addressKey string
}

func (a *pathAdapter) Name() string { return a.name }

func (a *pathAdapter) Path(kind Kind) (string, error) {
	p, ok := a.paths[kind]
	if !ok {
		return "", fmt.Errorf("adapter %s: unsupported kind %q", a.name, kind)
	}
	return p, nil
}

func (a *pathAdapter) Query(kind Kind, chainID string, p Params) map[string]string {
	q := map[string]string{a.chainKey: chainID}
	if p.Address != "" && (kind == KindTicker || kind == KindTrades) {
		q[a.addressKey] = p.Address
	}
	if p.Limit > 0 && (kind == KindTrades || kind == KindTrending) {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	return q
}

// MarketAdapter 行情类接口
func MarketAdapter() Adapter {
	return &pathAdapter{
		name: "market",
		paths: map[Kind]string{
			KindTokenList: "/api/v5/dex/market/all-tokens",
			KindTicker:    "/api/v5/dex/market/price-info",
			KindTrades:    "/api/v5/dex/market/trades",
			KindTrending:  "/api/v5/dex/market/token/toplist",
		},
		chainKey:   "chainIndex",
		addressKey: "tokenContractAddress",
	}
}

// AggregatorAdapter 聚合器类接口
func AggregatorAdapter() Adapter {
	return &pathAdapter{
		name: "aggregator",
		paths: map[Kind]string{
			KindTokenList: "/api/v5/dex/aggregator/all-tokens",
			KindTicker:    "/api/v5/dex/aggregator/price-info",
			KindTrades:    "/api/v5/dex/aggregator/trades",
			KindTrending:  "/api/v5/dex/aggregator/token/toplist",
		},
		chainKey:   "chainId",
		addressKey: "tokenAddress",
	}
}

// NewAdapter 按名称选择，空串默认 market
func NewAdapter(name string) (Adapter, error) {
	switch name {
	case "", "market":
		return MarketAdapter(), nil
	case "aggregator":
		return AggregatorAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown exchange adapter %q", name)
	}
}
