package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/model"
	"token-radar/internal/radar/store"
	"token-radar/pkg/utils"

	"go.uber.org/zap"
)

// TokenPublisher 新 token 事件发布
type TokenPublisher interface {
	Publish(ctx context.Context, tokens []model.Token) error
}

// TokenMirror 新 token 镜像到数据库
type TokenMirror interface {
	Upsert(ctx context.Context, tokens []model.Token) error
}

type DiscoveryService struct {
	cfg       config.DiscoverConfig
	market    MarketData
	store     *store.FileStore
	publisher TokenPublisher
	mirror    TokenMirror
	tl        *zap.Logger
	now       func() time.Time

	mu sync.Mutex // 同一时间只跑一次发现
}

// NewDiscoveryService publisher、mirror 可为 nil
func NewDiscoveryService(cfg config.DiscoverConfig, market MarketData, fs *store.FileStore, publisher TokenPublisher, mirror TokenMirror, tl *zap.Logger) *DiscoveryService {
	return &DiscoveryService{cfg: cfg, market: market, store: fs, publisher: publisher, mirror: mirror, tl: tl, now: time.Now}
}

// Discover 拉取全量列表，与上次保存的列表按小写地址做差集
// 首次运行没有历史列表时，只把 new_token_max_age 内上线的 token 视为新 token
func (s *DiscoveryService) Discover(ctx context.Context) (model.DiscoveryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.market.TokenList(ctx)
	if err != nil {
		return model.DiscoveryResult{}, fmt.Errorf("fetch token list: %w", err)
	}

	// 历史列表损坏时按首次运行处理，本次结果会覆盖该文件
	previous, err := s.store.LoadTokenList()
	if err != nil {
		s.tl.Warn("previous token list unreadable, starting fresh", zap.Error(err))
		previous = nil
	}
	firstRun := len(previous) == 0

	seen := make(map[string]bool, len(previous)+len(list.Data))
	for _, t := range previous {
		seen[utils.NormalizeAddress(t.Address)] = true
	}

	now := s.now()
	merged := append([]model.Token(nil), previous...)
	var fresh []model.Token
	for _, t := range list.Data {
		key := utils.NormalizeAddress(t.Address)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, t)
		if firstRun && !s.recent(t, now) {
			continue
		}
		fresh = append(fresh, t)
	}

	// 最新上线的排在前面
	sort.SliceStable(fresh, func(i, j int) bool { return fresh[i].ListingTime > fresh[j].ListingTime })
	if s.cfg.MaxNewTokens > 0 && len(fresh) > s.cfg.MaxNewTokens {
		fresh = fresh[:s.cfg.MaxNewTokens]
	}
	if fresh == nil {
		fresh = []model.Token{}
	}

	if err := s.store.SaveJSON(store.TokenListFile, merged); err != nil {
		return model.DiscoveryResult{}, err
	}
	if err := s.store.SaveJSON(store.NewTokensFile, fresh); err != nil {
		return model.DiscoveryResult{}, err
	}

	if len(fresh) > 0 {
		s.fanout(ctx, fresh)
	}

	s.tl.Info("token discovery finished",
		zap.Int("total", len(merged)),
		zap.Int("previous", len(previous)),
		zap.Int("new", len(fresh)),
		zap.String("source", string(list.Source)))

	return model.DiscoveryResult{
		NewTokens:      fresh,
		TotalTokens:    len(merged),
		PreviousTokens: len(previous),
		Source:         list.Source,
		DiscoveredAt:   now,
	}, nil
}

func (s *DiscoveryService) recent(t model.Token, now time.Time) bool {
	if s.cfg.NewTokenMaxAge <= 0 || t.ListingTime <= 0 {
		return true
	}
	return now.Sub(utils.ToTime(t.ListingTime)) <= s.cfg.NewTokenMaxAge
}

// fanout 发布事件和镜像失败只记录日志
func (s *DiscoveryService) fanout(ctx context.Context, tokens []model.Token) {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, tokens); err != nil {
			s.tl.Warn("publish new tokens failed", zap.Int("count", len(tokens)), zap.Error(err))
		}
	}
	if s.mirror != nil {
		if err := s.mirror.Upsert(ctx, tokens); err != nil {
			s.tl.Warn("mirror new tokens failed", zap.Int("count", len(tokens)), zap.Error(err))
		}
	}
}

// LoadNewTokens 上一次保存的新 token 列表
func (s *DiscoveryService) LoadNewTokens() ([]model.Token, error) {
	var tokens []model.Token
	if _, err := s.store.LoadJSON(store.NewTokensFile, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}
