package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/model"
	"token-radar/internal/radar/store"
	"token-radar/pkg/scraper"
	"token-radar/pkg/utils"

	"go.uber.org/zap"
)

// PageScraper 抓取热门榜页面
type PageScraper interface {
	Scrape(ctx context.Context, url string, sel scraper.Selectors, headers map[string]string) ([]scraper.Record, error)
}

// staticMemes 所有数据源都不可用时的兜底列表
var staticMemes = []model.TrendingToken{
	{Token: model.Token{Address: "0x6982508145454Ce325dDbE47a25d4ec3d2311933", Symbol: "PEPE", Name: "Pepe", Decimals: 18}, PriceUSD: 0.0000012, Volume24h: 350_000_000, Liquidity: 60_000_000, PriceChange24h: 4.2},
	{Token: model.Token{Address: "0x95aD61b0a150d79219dCF64E1E6Cc01f0B64C4cE", Symbol: "SHIB", Name: "Shiba Inu", Decimals: 18}, PriceUSD: 0.000018, Volume24h: 220_000_000, Liquidity: 45_000_000, PriceChange24h: 2.1},
	{Token: model.Token{Address: "0xcf0C122c6b73ff809C693DB761e7BaeBe62b6a2E", Symbol: "FLOKI", Name: "Floki", Decimals: 9}, PriceUSD: 0.00015, Volume24h: 80_000_000, Liquidity: 12_000_000, PriceChange24h: 6.8},
	{Token: model.Token{Address: "0x1151CB3d861920e07a38e03eEAd12C32178567F6", Symbol: "BONK", Name: "Bonk", Decimals: 5}, PriceUSD: 0.00002, Volume24h: 40_000_000, Liquidity: 5_000_000, PriceChange24h: 3.3},
}

var errNoCandidates = errors.New("no trending candidates")

// RecencyBonus <1 天 2 倍，<3 天 1.5 倍，<7 天 1.2 倍
func RecencyBonus(ageDays float64) float64 {
	switch {
	case ageDays < 1:
		return 2
	case ageDays < 3:
		return 1.5
	case ageDays < 7:
		return 1.2
	default:
		return 1
	}
}

// TrendingScore volume·change/100 × 流动性加成 × 新币加成；上线时间未知时不加成。
// 不做取整，保证加成倍数精确
func TrendingScore(t model.TrendingToken, highLiquidity float64) float64 {
	score := t.Volume24h * t.PriceChange24h / 100
	if t.Liquidity >= highLiquidity {
		score *= 1.5
	}
	if t.ListingTime > 0 {
		score *= RecencyBonus(t.AgeInDays)
	}
	return finite(score)
}

type TrendingService struct {
	cfg     config.TrendingConfig
	market  MarketData
	scraper PageScraper
	store   *store.FileStore
	tl      *zap.Logger
	now     func() time.Time
}

func NewTrendingService(cfg config.TrendingConfig, market MarketData, sc PageScraper, fs *store.FileStore, tl *zap.Logger) *TrendingService {
	return &TrendingService{cfg: cfg, market: market, scraper: sc, store: fs, tl: tl, now: time.Now}
}

// Discover 依次尝试 上游热门榜 -> 页面抓取 -> 关键词过滤 -> 静态列表
func (s *TrendingService) Discover(ctx context.Context) ([]model.TrendingToken, model.Source, error) {
	stages := []struct {
		origin model.TrendingOrigin
		fn     func(context.Context) ([]model.TrendingToken, model.Source, error)
	}{
		{model.OriginAPI, s.fromAPI},
		{model.OriginScrape, s.fromScrape},
		{model.OriginKeyword, s.fromKeywords},
	}

	for _, st := range stages {
		candidates, source, err := st.fn(ctx)
		if err != nil {
			s.tl.Info("trending stage skipped", zap.String("stage", string(st.origin)), zap.Error(err))
			continue
		}
		ranked := s.rank(candidates, st.origin, true)
		if len(ranked) == 0 {
			s.tl.Info("trending stage produced nothing above min volume", zap.String("stage", string(st.origin)))
			continue
		}
		s.save(ranked)
		return ranked, source, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	ranked := s.rank(append([]model.TrendingToken(nil), staticMemes...), model.OriginStatic, false)
	s.save(ranked)
	return ranked, model.SourceSynthetic, nil
}

// fromAPI 只接受真实数据，合成数据交给后续数据源
func (s *TrendingService) fromAPI(ctx context.Context) ([]model.TrendingToken, model.Source, error) {
	res, err := s.market.Trending(ctx, s.cfg.Limit*2)
	if err != nil {
		return nil, "", err
	}
	if res.Source != model.SourceLive {
		return nil, "", errors.New("trending api returned synthetic data")
	}
	out := make([]model.TrendingToken, 0, len(res.Data))
	for _, t := range res.Data {
		out = append(out, fromTicker(t))
	}
	return out, model.SourceLive, nil
}

func (s *TrendingService) fromScrape(ctx context.Context) ([]model.TrendingToken, model.Source, error) {
	if s.cfg.ScrapeURL == "" || s.scraper == nil {
		return nil, "", errors.New("scrape url not configured")
	}
	records, err := s.scraper.Scrape(ctx, s.cfg.ScrapeURL, s.cfg.Selectors, nil)
	if err != nil {
		return nil, "", err
	}
	out := make([]model.TrendingToken, 0, len(records))
	for _, r := range records {
		if r["symbol"] == "" {
			continue
		}
		out = append(out, model.TrendingToken{
			Token: model.Token{
				Address: utils.ChecksumAddress(r["address"]),
				Symbol:  strings.ToUpper(r["symbol"]),
				Name:    r["name"],
			},
			PriceUSD:       parseDisplayNumber(r["price"]),
			Volume24h:      parseDisplayNumber(r["volume"]),
			Liquidity:      parseDisplayNumber(r["liquidity"]),
			PriceChange24h: parseDisplayNumber(r["change"]),
		})
	}
	return out, model.SourceLive, nil
}

// fromKeywords 全量 token 列表中名称命中 meme 关键词的，逐个补行情
func (s *TrendingService) fromKeywords(ctx context.Context) ([]model.TrendingToken, model.Source, error) {
	list, err := s.market.TokenList(ctx)
	if err != nil {
		return nil, "", err
	}
	source := list.Source

	maxCandidates := s.cfg.Limit * 2
	var out []model.TrendingToken
	for _, t := range list.Data {
		if maxCandidates > 0 && len(out) >= maxCandidates {
			break
		}
		if !IsMeme(t, s.cfg.MemeKeywords) {
			continue
		}
		ticker, err := s.market.Ticker(ctx, t.Address)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			s.tl.Debug("ticker for meme candidate failed", zap.String("address", t.Address), zap.Error(err))
			continue
		}
		source = source.Merge(ticker.Source)
		tt := fromTicker(ticker.Data)
		tt.Token = t
		if tt.ListingTime == 0 {
			tt.ListingTime = ticker.Data.ListingTime
		}
		out = append(out, tt)
	}
	if len(out) == 0 {
		return nil, "", errNoCandidates
	}
	return out, source, nil
}

// rank 计算年龄与得分、过滤低成交量、排序截断
func (s *TrendingService) rank(tokens []model.TrendingToken, origin model.TrendingOrigin, applyMinVolume bool) []model.TrendingToken {
	now := s.now()
	out := make([]model.TrendingToken, 0, len(tokens))
	for _, t := range tokens {
		if applyMinVolume && t.Volume24h < s.cfg.MinVolume {
			continue
		}
		t.Origin = origin
		if t.ListingTime > 0 {
			t.AgeInDays = utils.Round(now.Sub(utils.ToTime(t.ListingTime)).Hours()/24, 2)
		}
		t.TrendingScore = TrendingScore(t, s.cfg.HighLiquidity)
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TrendingScore > out[j].TrendingScore })
	if s.cfg.Limit > 0 && len(out) > s.cfg.Limit {
		out = out[:s.cfg.Limit]
	}
	return out
}

func (s *TrendingService) save(tokens []model.TrendingToken) {
	if s.store == nil {
		return
	}
	_ = s.store.SaveJSON(store.TrendingMemesFile, tokens)
}

// IsMeme symbol 或 name 包含任一关键词
func IsMeme(t model.Token, keywords []string) bool {
	symbol := strings.ToLower(t.Symbol)
	name := strings.ToLower(t.Name)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(symbol, kw) || strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func fromTicker(t model.Ticker) model.TrendingToken {
	return model.TrendingToken{
		Token: model.Token{
			Address:     t.Address,
			Symbol:      t.Symbol,
			Name:        t.Name,
			ListingTime: t.ListingTime,
		},
		PriceUSD:       t.PriceUSD,
		Volume24h:      t.Volume24h,
		Liquidity:      t.Liquidity,
		PriceChange24h: t.PriceChange24h,
	}
}

// parseDisplayNumber 解析页面展示的数字，如 "$1,234.5"、"+12.3%"、"1.2M"
func parseDisplayNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", "%", "", "+", "").Replace(s)
	mult := 1.0
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'K', 'k':
			mult, s = 1e3, s[:n-1]
		case 'M', 'm':
			mult, s = 1e6, s[:n-1]
		case 'B', 'b':
			mult, s = 1e9, s[:n-1]
		}
	}
	return utils.ParseFloat(s, 0) * mult
}
