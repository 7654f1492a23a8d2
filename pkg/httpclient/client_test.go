package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"token-radar/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDoTextSendsBodyVerbatim(t *testing.T) {
	var gotMethod, gotBody, gotType, gotAgent, gotSign string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotMethod, gotBody = r.Method, string(b)
		gotType = r.Header.Get("Content-Type")
		gotAgent = r.Header.Get("User-Agent")
		gotSign = r.Header.Get("OK-ACCESS-SIGN")
		_, _ = w.Write([]byte(`{"code":"0"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPClientConfig{UserAgent: "token-radar"}, zap.NewNop())
	text, err := c.DoText(context.Background(), http.MethodPost, srv.URL+"/api/v5/x", []byte(`{"a":1}`), map[string]string{"OK-ACCESS-SIGN": "sig"})
	require.NoError(t, err)

	assert.Equal(t, `{"code":"0"}`, text)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, `{"a":1}`, gotBody)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "token-radar", gotAgent)
	assert.Equal(t, "sig", gotSign)
}

func TestGetTextStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPClientConfig{}, zap.NewNop())
	_, err := c.GetText(context.Background(), srv.URL, nil)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)
}

func TestLimiterKeyedByPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	limiter := ratelimit.NewKeyedLimiter(time.Hour, 1)
	c := NewHTTPClient(HTTPClientConfig{Timeout: 100 * time.Millisecond, Limiter: limiter}, zap.NewNop())

	_, err := c.GetText(context.Background(), srv.URL+"/a?x=1", nil)
	require.NoError(t, err)
	_, err = c.GetText(context.Background(), srv.URL+"/b", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, limiter.Keys())

	// 同一路径第二次请求等不到令牌
	_, err = c.GetText(context.Background(), srv.URL+"/a?x=2", nil)
	assert.Error(t, err)
}

func TestEndpointKey(t *testing.T) {
	assert.Equal(t, "/api/v5/market", EndpointKey("https://web3.okx.com/api/v5/market?chainIndex=196"))
	assert.Equal(t, "no-path", EndpointKey("no-path"))
}
