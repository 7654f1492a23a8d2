package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("2024-01-02T03:04:05.678ZGET/api/v5/dex/market/price-info?chainIndex=196"))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	got := Sign("secret", "2024-01-02T03:04:05.678Z", "GET", "/api/v5/dex/market/price-info?chainIndex=196", "")
	assert.Equal(t, want, got)
}

func TestSignerHeaders(t *testing.T) {
	s := NewSigner("key", "secret", "pass")
	s.now = func() time.Time {
		return time.Date(2024, 1, 2, 11, 4, 5, 678_000_000, time.FixedZone("CST", 8*3600))
	}

	h := s.Headers("GET", "/path?a=1", "")
	assert.Equal(t, "2024-01-02T03:04:05.678Z", h["OK-ACCESS-TIMESTAMP"])
	assert.Equal(t, "key", h["OK-ACCESS-KEY"])
	assert.Equal(t, "pass", h["OK-ACCESS-PASSPHRASE"])
	assert.Equal(t, Sign("secret", "2024-01-02T03:04:05.678Z", "GET", "/path?a=1", ""), h["OK-ACCESS-SIGN"])
}

func TestRequestPathSorted(t *testing.T) {
	got := requestPath("/p", map[string]string{"limit": "5", "chainIndex": "196"})
	assert.Equal(t, "/p?chainIndex=196&limit=5", got)
	assert.Equal(t, "/p", requestPath("/p", nil))
}
