package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Signer 生成 OK-ACCESS-* 请求头
type Signer struct {
	apiKey     string
	secretKey  string
	passphrase string
	now        func() time.Time
}

func NewSigner(apiKey, secretKey, passphrase string) *Signer {
	return &Signer{apiKey: apiKey, secretKey: secretKey, passphrase: passphrase, now: time.Now}
}

// Sign base64(HMAC-SHA256(secret, timestamp+method+requestPath+body))
func Sign(secretKey, timestamp, method, requestPath, body string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(timestamp + method + requestPath + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Headers requestPath 必须包含实际发送的 query string
func (s *Signer) Headers(method, requestPath, body string) map[string]string {
	ts := s.now().UTC().Format(timestampLayout)
	return map[string]string{
		"OK-ACCESS-KEY":        s.apiKey,
		"OK-ACCESS-SIGN":       Sign(s.secretKey, ts, method, requestPath, body),
		"OK-ACCESS-TIMESTAMP":  ts,
		"OK-ACCESS-PASSPHRASE": s.passphrase,
		"Content-Type":         "application/json",
	}
}
