package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/exchange"
	"token-radar/internal/radar/model"
	"token-radar/internal/radar/store"
	"token-radar/pkg/utils"

	"go.uber.org/zap"
)

// fakeMarket 内存数据源
type fakeMarket struct {
	mu       sync.Mutex
	tokens   []model.Token
	tickers  map[string]model.Ticker
	trades   map[string][]model.Trade
	trending []model.Ticker
	source   model.Source
	err      error
	calls    map[string]int
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		tickers: map[string]model.Ticker{},
		trades:  map[string][]model.Trade{},
		source:  model.SourceLive,
		calls:   map[string]int{},
	}
}

func (f *fakeMarket) count(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeMarket) TokenList(ctx context.Context) (exchange.Result[[]model.Token], error) {
	f.count("tokenList")
	if f.err != nil {
		return exchange.Result[[]model.Token]{}, f.err
	}
	return exchange.Result[[]model.Token]{Data: f.tokens, Source: f.source}, nil
}

func (f *fakeMarket) Ticker(ctx context.Context, address string) (exchange.Result[model.Ticker], error) {
	f.count("ticker")
	t, ok := f.tickers[utils.NormalizeAddress(address)]
	if !ok {
		return exchange.Result[model.Ticker]{Source: f.source}, exchange.ErrNotFound
	}
	return exchange.Result[model.Ticker]{Data: t, Source: f.source}, nil
}

func (f *fakeMarket) Trades(ctx context.Context, address string, limit int) (exchange.Result[[]model.Trade], error) {
	f.count("trades")
	return exchange.Result[[]model.Trade]{Data: f.trades[utils.NormalizeAddress(address)], Source: f.source}, nil
}

func (f *fakeMarket) Trending(ctx context.Context, limit int) (exchange.Result[[]model.Ticker], error) {
	f.count("trending")
	if f.err != nil {
		return exchange.Result[[]model.Ticker]{}, f.err
	}
	return exchange.Result[[]model.Ticker]{Data: f.trending, Source: f.source}, nil
}

// addToken 同时注册列表项和行情
func (f *fakeMarket) addToken(address, symbol string, volume, liquidity float64, holders int64, change float64) {
	f.tokens = append(f.tokens, model.Token{Address: address, Symbol: symbol, Name: symbol + " Token", Decimals: 18, ChainID: "196"})
	f.tickers[utils.NormalizeAddress(address)] = model.Ticker{
		Address:        address,
		Symbol:         symbol,
		Name:           symbol + " Token",
		PriceUSD:       1,
		Volume24h:      volume,
		Liquidity:      liquidity,
		Holders:        holders,
		PriceChange24h: change,
	}
}

func testMetricsConfig() config.MetricsConfig {
	return config.MetricsConfig{TradeLimit: 100, BatchSize: 2, MaxTokens: 20}
}

func testTrendingConfig() config.TrendingConfig {
	return config.TrendingConfig{
		MemeKeywords:  []string{"pepe", "doge", "cat"},
		MinVolume:     1000,
		HighLiquidity: 50000,
		Limit:         10,
	}
}

func newTestStore(t *testing.T) *store.FileStore {
	return store.New(t.TempDir(), zap.NewNop())
}

// mockClient mock 模式下的真实 exchange.Client
func mockClient(t *testing.T) *exchange.Client {
	t.Helper()
	c, err := exchange.NewClient(config.ExchangeConfig{
		Adapter:      "market",
		ChainID:      "196",
		UseRealAPI:   false,
		MockFallback: true,
		Timeout:      time.Second,
	}, config.CacheConfig{}, nil, nil, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func ptr[T any](v T) *T { return &v }
