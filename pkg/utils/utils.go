package utils

import (
	"hash/crc32"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))

func RandomChoice(slice []string) string {
	if len(slice) == 0 {
		return ""
	}
	return slice[seededRand.Intn(len(slice))]
}

// ParseFloat 解析数字字符串，失败、空串、NaN/Inf 时返回默认值，从不报错
func ParseFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return def
	}
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// ParseInt 同 ParseFloat，小数部分截断
func ParseInt(s string, def int64) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return def
	}
	return d.IntPart()
}

// Round 按位数四舍五入
func Round(f float64, places int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

// Clamp 限制在 [lo, hi]
func Clamp(f, lo, hi float64) float64 {
	if math.IsNaN(f) {
		return lo
	}
	return math.Max(lo, math.Min(hi, f))
}

// NormalizeAddress 地址统一小写，作为 token 身份 key
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ChecksumAddress 将 EVM 地址转换为 EIP-55 格式，非 hex 地址原样返回
func ChecksumAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return addr
	}
	return common.HexToAddress(addr).Hex()
}

// IsEVMAddress 是否为合法的 20 字节 hex 地址
func IsEVMAddress(addr string) bool {
	return common.IsHexAddress(strings.TrimSpace(addr))
}

// HashSeed 字符串转稳定的随机种子
func HashSeed(key string) int64 {
	return int64(crc32.ChecksumIEEE([]byte(key)))
}

// IsUnixSeconds 检查时间戳是否为秒级
func IsUnixSeconds(ts int64) bool {
	const maxUnix = 4_102_444_800 // 2100-01-01 00:00:00 UTC
	return ts >= 0 && ts < maxUnix
}

// ToTime 兼容秒/毫秒时间戳
func ToTime(ts int64) time.Time {
	if ts <= 0 {
		return time.Time{}
	}
	if IsUnixSeconds(ts) {
		return time.Unix(ts, 0)
	}
	return time.UnixMilli(ts)
}
