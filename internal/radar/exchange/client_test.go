package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/model"
	"token-radar/pkg/cache"
	"token-radar/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(baseURL string) config.ExchangeConfig {
	return config.ExchangeConfig{
		BaseURL:         baseURL,
		APIKey:          "key",
		SecretKey:       "secret",
		Passphrase:      "pass",
		Adapter:         "market",
		ChainID:         "196",
		UseRealAPI:      true,
		MockFallback:    true,
		Timeout:         2 * time.Second,
		BreakerFailures: 3,
		BreakerTimeout:  time.Minute,
	}
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enable:       true,
		TokenListTTL: time.Minute,
		TickerTTL:    time.Minute,
		TradesTTL:    time.Minute,
		TrendingTTL:  time.Minute,
	}
}

func newTestClient(t *testing.T, cfg config.ExchangeConfig) *Client {
	t.Helper()
	tl := zap.NewNop()
	c, err := NewClient(cfg, testCacheConfig(), cache.NewTTLCache(tl, nil, "test:"), ratelimit.NewKeyedLimiter(0, 1), tl)
	require.NoError(t, err)
	return c
}

const tickerBody = `{"code":"0","msg":"","data":[{"chainIndex":"196","tokenContractAddress":"0xabc0000000000000000000000000000000000001","tokenSymbol":"PEPE","tokenName":"Pepe","price":"0.0012","volume24H":"150000","liquidity":"80000","marketCap":"1200000","holders":"420","totalSupply":"1000000000","priceChange1H":"1.5","priceChange24H":"12.5","listingTime":"1700000000000","time":"1700003600000"}]}`

func TestTickerLive(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/v5/dex/market/price-info", r.URL.Path)
		assert.Equal(t, "196", r.URL.Query().Get("chainIndex"))
		assert.Equal(t, "0xabc", r.URL.Query().Get("tokenContractAddress"))
		assert.Equal(t, "key", r.Header.Get("OK-ACCESS-KEY"))
		assert.Equal(t, "pass", r.Header.Get("OK-ACCESS-PASSPHRASE"))

		ts := r.Header.Get("OK-ACCESS-TIMESTAMP")
		want := Sign("secret", ts, http.MethodGet, r.URL.RequestURI(), "")
		assert.Equal(t, want, r.Header.Get("OK-ACCESS-SIGN"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tickerBody))
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig(srv.URL))
	res, err := c.Ticker(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, res.Source)
	assert.Equal(t, "PEPE", res.Data.Symbol)
	assert.Equal(t, 150000.0, res.Data.Volume24h)
	assert.Equal(t, int64(420), res.Data.Holders)
	assert.Equal(t, int64(1700000000000), res.Data.ListingTime)

	// 第二次命中缓存
	_, err = c.Ticker(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestAggregatorAdapterParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/dex/aggregator/trades", r.URL.Path)
		assert.Equal(t, "196", r.URL.Query().Get("chainId"))
		assert.Equal(t, "0xabc", r.URL.Query().Get("tokenAddress"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[{"txHash":"0x1","time":"1700000000","tokenContractAddress":"0xabc","amount":"10","volume":"25.5","price":"2.55","type":"sell","userAddress":"0xdef"}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Adapter = "aggregator"
	c := newTestClient(t, cfg)

	res, err := c.Trades(context.Background(), "0xabc", 5)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, model.TradeSell, res.Data[0].Type)
	assert.Equal(t, 25.5, res.Data[0].AmountUSD)
	// 秒级时间戳统一为毫秒
	assert.Equal(t, int64(1700000000000), res.Data[0].Timestamp)
}

func TestFallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig(srv.URL))
	resp, err := c.Request(context.Background(), KindTicker, http.MethodGet, Params{Address: "0xabc"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, model.SourceSynthetic, resp.Source)
	assert.True(t, strings.HasPrefix(resp.Msg, "synthetic data"))

	res, err := c.Ticker(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, model.SourceSynthetic, res.Source)
	assert.Greater(t, res.Data.PriceUSD, 0.0)
}

func TestFallbackOnAPICode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"50011","msg":"too many requests","data":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig(srv.URL))
	res, err := c.TokenList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SourceSynthetic, res.Source)
	assert.NotEmpty(t, res.Data)
}

func TestFallbackDisabledReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"50011","msg":"too many requests","data":[]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MockFallback = false
	c := newTestClient(t, cfg)

	_, err := c.TokenList(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "50011", apiErr.Code)
}

func TestMissingCredentials(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.APIKey = ""
	c := newTestClient(t, cfg)

	res, err := c.Trending(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, model.SourceSynthetic, res.Source)
	assert.Len(t, res.Data, 5)

	cfg.MockFallback = false
	c = newTestClient(t, cfg)
	_, err = c.Trending(context.Background(), 5)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestMockModeNeverCallsUpstream(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.UseRealAPI = false
	c := newTestClient(t, cfg)

	res, err := c.Trades(context.Background(), "0xabc", 10)
	require.NoError(t, err)
	assert.Equal(t, model.SourceSynthetic, res.Source)
	assert.Len(t, res.Data, 10)
	assert.Zero(t, hits.Load())
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, testConfig(srv.URL))
	for i := 0; i < 6; i++ {
		res, err := c.Ticker(context.Background(), "0xabc")
		require.NoError(t, err)
		assert.Equal(t, model.SourceSynthetic, res.Source)
	}
	// 连续 3 次失败后熔断，后续请求不再打到上游
	assert.Equal(t, int32(3), hits.Load())
}

func TestOnResultCallback(t *testing.T) {
	cfg := testConfig("")
	cfg.UseRealAPI = false
	c := newTestClient(t, cfg)

	var got []model.Source
	c.OnResult(func(kind Kind, source model.Source) { got = append(got, source) })
	_, err := c.TokenList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Source{model.SourceSynthetic}, got)
}

func TestUnknownAdapter(t *testing.T) {
	cfg := testConfig("")
	cfg.Adapter = "spot"
	_, err := NewClient(cfg, testCacheConfig(), nil, nil, zap.NewNop())
	assert.Error(t, err)
}
