package exchange

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"token-radar/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
)

const mockTokenCount = 40

var (
	mockBases    = []string{"PEPE", "DOGE", "SHIB", "FLOKI", "WOJAK", "BONK", "MOON", "CAT", "FROG", "ELON", "WETH", "USDX", "LINK", "ARB", "GMX", "UNI", "AAVE", "OKB"}
	mockSuffixes = []string{"", "2", "AI", "X", "INU", "PRO"}
	mockNames    = map[string]string{
		"PEPE": "Pepe", "DOGE": "Doge", "SHIB": "Shiba", "FLOKI": "Floki", "WOJAK": "Wojak",
		"BONK": "Bonk", "MOON": "Moon", "CAT": "Cat", "FROG": "Frog", "ELON": "Elon",
		"WETH": "Wrapped Ether", "USDX": "USD X", "LINK": "Chainlink", "ARB": "Arbitrum",
		"GMX": "GMX", "UNI": "Uniswap", "AAVE": "Aave", "OKB": "OKB",
	}
)

// Mock 生成与上游 schema 一致的合成数据
// token 列表按链 ID 确定性生成，保证 mock 模式下发现任务幂等；行情与成交随机
type Mock struct {
	chainID string
	now     func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand

	once   sync.Once
	tokens []TokenRow
}

func NewMock(chainID string) *Mock {
	return &Mock{
		chainID: chainID,
		now:     time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate 返回 kind 对应的 data 数组 JSON
func (m *Mock) Generate(kind Kind, p Params) ([]byte, error) {
	switch kind {
	case KindTokenList:
		return sonic.Marshal(m.TokenRows())
	case KindTicker:
		return sonic.Marshal([]TickerRow{m.tickerRow(p.Address)})
	case KindTrades:
		return sonic.Marshal(m.tradeRows(p.Address, p.Limit))
	case KindTrending:
		return sonic.Marshal(m.trendingRows(p.Limit))
	default:
		return nil, fmt.Errorf("mock: unsupported kind %q", kind)
	}
}

// TokenRows 同一个链 ID 每次返回相同的列表
func (m *Mock) TokenRows() []TokenRow {
	m.once.Do(func() {
		r := rand.New(rand.NewSource(utils.HashSeed(m.chainID)))
		// 上线时间取整到天，保证同一天内多次生成结果一致
		base := m.now().UTC().Truncate(24 * time.Hour)
		seen := make(map[string]bool)
		for len(m.tokens) < mockTokenCount {
			b := mockBases[r.Intn(len(mockBases))]
			symbol := b + mockSuffixes[r.Intn(len(mockSuffixes))]
			if seen[symbol] {
				continue
			}
			seen[symbol] = true
			listed := base.Add(-time.Duration(r.Intn(30*24)) * time.Hour)
			m.tokens = append(m.tokens, TokenRow{
				TokenContractAddress: randomAddress(r),
				TokenSymbol:          symbol,
				TokenName:            strings.TrimSpace(mockNames[b] + " " + strings.TrimPrefix(symbol, b)),
				Decimals:             "18",
				ListingTime:          strconv.FormatInt(listed.UnixMilli(), 10),
			})
		}
	})
	return m.tokens
}

func (m *Mock) lookup(address string) (TokenRow, bool) {
	key := utils.NormalizeAddress(address)
	for _, t := range m.TokenRows() {
		if utils.NormalizeAddress(t.TokenContractAddress) == key {
			return t, true
		}
	}
	return TokenRow{}, false
}

func (m *Mock) tickerRow(address string) TickerRow {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.lookup(address)
	if !ok {
		t = TokenRow{
			TokenContractAddress: utils.ChecksumAddress(address),
			TokenSymbol:          "MOCK",
			TokenName:            "Mock Token",
			ListingTime:          strconv.FormatInt(m.now().Add(-time.Duration(m.rnd.Intn(72)+1)*time.Hour).UnixMilli(), 10),
		}
	}
	return m.randomTicker(t)
}

// randomTicker 调用方持有 m.mu
func (m *Mock) randomTicker(t TokenRow) TickerRow {
	r := m.rnd
	price := 0.000001 + r.Float64()*2
	supply := float64(r.Int63n(1_000_000_000) + 1_000_000)
	return TickerRow{
		ChainIndex:           m.chainID,
		TokenContractAddress: t.TokenContractAddress,
		TokenSymbol:          t.TokenSymbol,
		TokenName:            t.TokenName,
		Price:                fmtFloat(price),
		Volume24H:            fmtFloat(r.Float64() * 500_000),
		Liquidity:            fmtFloat(r.Float64() * 200_000),
		MarketCap:            fmtFloat(price * supply),
		Holders:              strconv.Itoa(r.Intn(5000) + 10),
		TotalSupply:          fmtFloat(supply),
		PriceChange1H:        fmtFloat(r.Float64()*20 - 10),
		PriceChange24H:       fmtFloat(r.Float64()*100 - 30),
		ListingTime:          t.ListingTime,
		Time:                 strconv.FormatInt(m.now().UnixMilli(), 10),
	}
}

func (m *Mock) tradeRows(address string, limit int) []TradeRow {
	if limit <= 0 {
		limit = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.rnd
	now := m.now()
	price := 0.000001 + r.Float64()*2
	rows := make([]TradeRow, 0, limit)
	for i := 0; i < limit; i++ {
		p := price * (0.9 + r.Float64()*0.2)
		amount := r.Float64() * 100_000
		side := "buy"
		if r.Intn(2) == 0 {
			side = "sell"
		}
		rows = append(rows, TradeRow{
			TxHash:               randomHash(r),
			Time:                 strconv.FormatInt(now.Add(-time.Duration(r.Intn(7200))*time.Second).UnixMilli(), 10),
			TokenContractAddress: utils.ChecksumAddress(address),
			Amount:               fmtFloat(amount),
			Volume:               fmtFloat(amount * p),
			Price:                fmtFloat(p),
			Type:                 side,
			UserAddress:          randomAddress(r),
		})
	}
	return rows
}

func (m *Mock) trendingRows(limit int) []TickerRow {
	tokens := m.TokenRows()
	if limit <= 0 || limit > len(tokens) {
		limit = len(tokens)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]TickerRow, 0, limit)
	for _, i := range m.rnd.Perm(len(tokens))[:limit] {
		rows = append(rows, m.randomTicker(tokens[i]))
	}
	return rows
}

// randomAddress EIP-55 校验和格式
func randomAddress(r *rand.Rand) string {
	var b [common.AddressLength]byte
	r.Read(b[:])
	return common.BytesToAddress(b[:]).Hex()
}

func randomHash(r *rand.Rand) string {
	var b [common.HashLength]byte
	r.Read(b[:])
	return common.BytesToHash(b[:]).Hex()
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
