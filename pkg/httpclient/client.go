package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"token-radar/pkg/ratelimit"

	"go.uber.org/zap"
	"resty.dev/v3"
)

// HTTPClientConfig 配置参数
type HTTPClientConfig struct {
	Timeout    time.Duration // 请求超时时间
	MaxRetries int           // 最大重试次数，0 表示不重试
	UserAgent  string        // 可选 User-Agent
	// Limiter 可选的按接口限流器，key 为请求路径
	Limiter *ratelimit.KeyedLimiter
}

// HTTPClient 是一个通用的 HTTP 客户端
type HTTPClient struct {
	client *resty.Client
	logger *zap.Logger
}

// NewHTTPClient 创建一个新的 HTTP 客户端
func NewHTTPClient(cfg HTTPClientConfig, logger *zap.Logger) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	restyClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
			if cfg.Limiter != nil {
				// 为限流器等待创建带超时的上下文
				limiterCtx, cancel := context.WithTimeout(r.Context(), cfg.Timeout)
				defer cancel()

				if err := cfg.Limiter.Wait(limiterCtx, EndpointKey(r.URL)); err != nil {
					logger.Warn("Rate limiter wait failed", zap.String("url", r.URL), zap.Error(err))
					return err
				}
			}
			if cfg.UserAgent != "" && r.Header.Get("User-Agent") == "" {
				r.SetHeader("User-Agent", cfg.UserAgent)
			}
			logger.Debug("Outgoing request", zap.String("method", r.Method), zap.String("url", r.URL))
			return nil
		}).
		AddResponseMiddleware(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				logger.Warn("HTTP request failed",
					zap.Int("status", resp.StatusCode()),
					zap.String("url", resp.Request.URL),
				)
			}
			return nil
		})

	return &HTTPClient{
		client: restyClient,
		logger: logger,
	}
}

// EndpointKey 取 URL 的 path 作为限流 key，解析失败时使用原串
func EndpointKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return rawURL
	}
	return u.Path
}

// GetText 发起 GET 请求并返回原始响应文本，用于 HTML 页面
func (c *HTTPClient) GetText(ctx context.Context, url string, headers map[string]string) (string, error) {
	return c.DoText(ctx, http.MethodGet, url, nil, headers)
}

// DoText 按原样发送 body 并返回响应文本，签名请求需要保证发送内容与签名一致
func (c *HTTPClient) DoText(ctx context.Context, method, url string, body []byte, headers map[string]string) (string, error) {
	req := c.client.R().SetContext(ctx)
	if headers != nil {
		req.SetHeaders(headers)
	}
	if len(body) > 0 {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		c.logger.Debug("HTTP request failed", zap.String("method", method), zap.String("url", url), zap.Error(err))
		return "", err
	}

	if resp.StatusCode() >= 400 {
		return "", &HTTPError{Code: resp.StatusCode(), Message: resp.Status()}
	}

	return resp.String(), nil
}

// HTTPError 非 2xx 响应
type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.Code, e.Message)
}
