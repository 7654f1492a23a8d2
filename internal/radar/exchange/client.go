package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/model"
	"token-radar/pkg/cache"
	"token-radar/pkg/httpclient"
	"token-radar/pkg/ratelimit"

	"github.com/bytedance/sonic"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	ErrMissingCredentials = errors.New("exchange credentials not configured")
	ErrNotFound           = errors.New("no data returned")
)

// APIError 上游返回 code != "0"
type APIError struct {
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error code=%s msg=%s", e.Code, e.Msg)
}

// Response 统一响应，Source 标记是否为合成数据
type Response struct {
	Status int             `json:"status"`
	Code   string          `json:"code"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
	Source model.Source    `json:"source"`
}

// Result 类型化结果
type Result[T any] struct {
	Data   T
	Source model.Source
}

// Client 上游 API 客户端：签名、限流、缓存、熔断、合成数据降级
type Client struct {
	cfg      config.ExchangeConfig
	cacheCfg config.CacheConfig
	adapter  Adapter
	http     *httpclient.HTTPClient
	cache    *cache.TTLCache
	breaker  *gobreaker.CircuitBreaker
	signer   *Signer
	mock     *Mock
	tl       *zap.Logger

	onResult func(kind Kind, source model.Source)
}

// NewClient ttlCache 为 nil 或缓存关闭时不缓存；limiter 为 nil 或限流关闭时不限流
func NewClient(cfg config.ExchangeConfig, cacheCfg config.CacheConfig, ttlCache *cache.TTLCache, limiter *ratelimit.KeyedLimiter, tl *zap.Logger) (*Client, error) {
	adapter, err := NewAdapter(cfg.Adapter)
	if err != nil {
		return nil, err
	}
	if !cfg.EnableRateLimit {
		limiter = nil
	}
	if !cacheCfg.Enable {
		ttlCache = nil
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "exchange",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			tl.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		cfg:      cfg,
		cacheCfg: cacheCfg,
		adapter:  adapter,
		http: httpclient.NewHTTPClient(httpclient.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			UserAgent: "token-radar/1.0",
			Limiter:   limiter,
		}, tl),
		cache:   ttlCache,
		breaker: breaker,
		signer:  NewSigner(cfg.APIKey, cfg.SecretKey, cfg.Passphrase),
		mock:    NewMock(cfg.ChainID),
		tl:      tl,
	}, nil
}

// OnResult 每次请求结束后回调，用于统计 live / synthetic 次数
func (c *Client) OnResult(fn func(kind Kind, source model.Source)) {
	c.onResult = fn
}

func (c *Client) Adapter() Adapter { return c.adapter }

func (c *Client) ChainID() string { return c.cfg.ChainID }

func (c *Client) ttl(kind Kind) time.Duration {
	switch kind {
	case KindTokenList:
		return c.cacheCfg.TokenListTTL
	case KindTicker:
		return c.cacheCfg.TickerTTL
	case KindTrades:
		return c.cacheCfg.TradesTTL
	case KindTrending:
		return c.cacheCfg.TrendingTTL
	}
	return 0
}

// requestPath path + 编码后的 query，签名与发送使用同一个字符串
func requestPath(path string, query map[string]string) string {
	if len(query) == 0 {
		return path
	}
	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}
	return path + "?" + values.Encode()
}

// Request 发起请求；失败时按配置降级为合成数据或返回错误
func (c *Client) Request(ctx context.Context, kind Kind, method string, p Params) (*Response, error) {
	resp, err := c.request(ctx, kind, method, p)
	if resp != nil && c.onResult != nil {
		c.onResult(kind, resp.Source)
	}
	return resp, err
}

func (c *Client) request(ctx context.Context, kind Kind, method string, p Params) (*Response, error) {
	path, err := c.adapter.Path(kind)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = http.MethodGet
	}

	query := c.adapter.Query(kind, c.cfg.ChainID, p)
	var body []byte
	reqPath := requestPath(path, query)
	if method != http.MethodGet {
		// 非 GET 请求参数放在 body 中
		reqPath = path
		if body, err = sonic.Marshal(query); err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}
	cacheKey := method + " " + reqPath + string(body)

	if !c.cfg.UseRealAPI {
		return c.fallback(kind, p, "real API disabled")
	}

	if cached, ok := c.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	if !c.cfg.HasCredentials() {
		return c.fail(kind, p, ErrMissingCredentials)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx, method, reqPath, body)
	})
	if err != nil {
		return c.fail(kind, p, err)
	}

	env := out.(*envelope)
	resp := &Response{
		Status: http.StatusOK,
		Code:   env.Code,
		Msg:    env.Msg,
		Data:   env.Data,
		Source: model.SourceLive,
	}
	c.toCache(ctx, cacheKey, resp, c.ttl(kind))
	return resp, nil
}

func (c *Client) call(ctx context.Context, method, reqPath string, body []byte) (*envelope, error) {
	headers := c.signer.Headers(method, reqPath, string(body))
	text, err := c.http.DoText(ctx, method, c.cfg.BaseURL+reqPath, body, headers)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := sonic.UnmarshalString(text, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Code != "0" {
		return nil, &APIError{Code: env.Code, Msg: env.Msg}
	}
	return &env, nil
}

// fail 上游失败：开启降级时返回合成数据，否则返回错误
func (c *Client) fail(kind Kind, p Params, cause error) (*Response, error) {
	c.tl.Warn("exchange request failed",
		zap.String("kind", string(kind)),
		zap.String("address", p.Address),
		zap.Bool("fallback", c.cfg.MockFallback),
		zap.Error(cause))
	if !c.cfg.MockFallback {
		return nil, fmt.Errorf("%s request: %w", kind, cause)
	}
	return c.fallback(kind, p, cause.Error())
}

func (c *Client) fallback(kind Kind, p Params, reason string) (*Response, error) {
	data, err := c.mock.Generate(kind, p)
	if err != nil {
		return nil, err
	}
	return &Response{
		Status: http.StatusOK,
		Code:   "0",
		Msg:    "synthetic data: " + reason,
		Data:   data,
		Source: model.SourceSynthetic,
	}, nil
}

func (c *Client) fromCache(ctx context.Context, key string) (*Response, bool) {
	if c.cache == nil {
		return nil, false
	}
	b, ok := c.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var resp Response
	if err := sonic.Unmarshal(b, &resp); err != nil {
		c.tl.Debug("drop undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.cache.Delete(ctx, key)
		return nil, false
	}
	return &resp, true
}

// toCache 只缓存真实数据
func (c *Client) toCache(ctx context.Context, key string, resp *Response, ttl time.Duration) {
	if c.cache == nil || resp.Source != model.SourceLive {
		return
	}
	b, err := sonic.Marshal(resp)
	if err != nil {
		return
	}
	c.cache.Set(ctx, key, b, ttl)
}

func decodeRows[T any](resp *Response) ([]T, error) {
	var rows []T
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return rows, nil
	}
	if err := sonic.Unmarshal(resp.Data, &rows); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return rows, nil
}

// TokenList 链上全部 token
func (c *Client) TokenList(ctx context.Context) (Result[[]model.Token], error) {
	resp, err := c.Request(ctx, KindTokenList, http.MethodGet, Params{})
	if err != nil {
		return Result[[]model.Token]{}, err
	}
	rows, err := decodeRows[TokenRow](resp)
	if err != nil {
		return Result[[]model.Token]{}, err
	}
	tokens := make([]model.Token, 0, len(rows))
	for _, r := range rows {
		if r.TokenContractAddress == "" {
			continue
		}
		tokens = append(tokens, r.toModel(c.cfg.ChainID))
	}
	return Result[[]model.Token]{Data: tokens, Source: resp.Source}, nil
}

// Ticker 单个 token 行情，无数据时返回 ErrNotFound
func (c *Client) Ticker(ctx context.Context, address string) (Result[model.Ticker], error) {
	resp, err := c.Request(ctx, KindTicker, http.MethodGet, Params{Address: address})
	if err != nil {
		return Result[model.Ticker]{}, err
	}
	rows, err := decodeRows[TickerRow](resp)
	if err != nil {
		return Result[model.Ticker]{}, err
	}
	if len(rows) == 0 {
		return Result[model.Ticker]{Source: resp.Source}, ErrNotFound
	}
	return Result[model.Ticker]{Data: rows[0].toModel(), Source: resp.Source}, nil
}

// Trades 最近 limit 笔成交
func (c *Client) Trades(ctx context.Context, address string, limit int) (Result[[]model.Trade], error) {
	resp, err := c.Request(ctx, KindTrades, http.MethodGet, Params{Address: address, Limit: limit})
	if err != nil {
		return Result[[]model.Trade]{}, err
	}
	rows, err := decodeRows[TradeRow](resp)
	if err != nil {
		return Result[[]model.Trade]{}, err
	}
	trades := make([]model.Trade, 0, len(rows))
	for _, r := range rows {
		trades = append(trades, r.toModel())
	}
	return Result[[]model.Trade]{Data: trades, Source: resp.Source}, nil
}

// Trending 上游热门榜
func (c *Client) Trending(ctx context.Context, limit int) (Result[[]model.Ticker], error) {
	resp, err := c.Request(ctx, KindTrending, http.MethodGet, Params{Limit: limit})
	if err != nil {
		return Result[[]model.Ticker]{}, err
	}
	rows, err := decodeRows[TickerRow](resp)
	if err != nil {
		return Result[[]model.Ticker]{}, err
	}
	tickers := make([]model.Ticker, 0, len(rows))
	for _, r := range rows {
		tickers = append(tickers, r.toModel())
	}
	return Result[[]model.Ticker]{Data: tickers, Source: resp.Source}, nil
}
