package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"token-radar/internal/radar/model"
	"token-radar/internal/radar/store"
	"token-radar/pkg/utils"

	"go.uber.org/zap"
)

// Radar 组合各个服务，供 HTTP、CLI、定时任务使用
type Radar struct {
	Discovery *DiscoveryService
	Metrics   *MetricsService
	Trending  *TrendingService

	store     *store.FileStore
	tl        *zap.Logger
	maxTokens int
	now       func() time.Time

	mu         sync.RWMutex
	lastResult *model.DiscoveryResult
}

func NewRadar(discovery *DiscoveryService, metrics *MetricsService, trending *TrendingService, fs *store.FileStore, maxTokens int, tl *zap.Logger) *Radar {
	return &Radar{
		Discovery: discovery,
		Metrics:   metrics,
		Trending:  trending,
		store:     fs,
		tl:        tl,
		maxTokens: maxTokens,
		now:       time.Now,
	}
}

func (r *Radar) Store() *store.FileStore { return r.store }

// Discover 执行发现任务并记住结果；本次无增量时保留上一次的新 token 供 NewTokens 使用
func (r *Radar) Discover(ctx context.Context) (model.DiscoveryResult, error) {
	res, err := r.Discovery.Discover(ctx)
	if err != nil {
		return res, err
	}
	kept := res
	r.mu.Lock()
	if len(res.NewTokens) == 0 && r.lastResult != nil {
		kept.NewTokens = r.lastResult.NewTokens
	}
	r.lastResult = &kept
	r.mu.Unlock()
	return res, nil
}

// NewTokens 最近一次发现结果；进程内没有结果时先执行一次发现，
// 增量为空则沿用上次保存的 new_tokens.json
func (r *Radar) NewTokens(ctx context.Context) ([]model.Token, model.Source, error) {
	r.mu.RLock()
	last := r.lastResult
	r.mu.RUnlock()
	if last != nil && len(last.NewTokens) > 0 {
		return last.NewTokens, last.Source, nil
	}

	saved, err := r.Discovery.LoadNewTokens()
	if err != nil {
		r.tl.Warn("load saved new tokens failed", zap.Error(err))
	}
	if last == nil {
		res, err := r.Discover(ctx)
		if err != nil {
			return nil, "", err
		}
		last = &res
	}
	if len(last.NewTokens) > 0 || len(saved) == 0 {
		return last.NewTokens, last.Source, nil
	}

	// 恢复上次的增量，避免重复发现后列表为空
	r.mu.Lock()
	restored := *last
	restored.NewTokens = saved
	r.lastResult = &restored
	r.mu.Unlock()
	return saved, last.Source, nil
}

// TrackedTokens 默认分析范围：新 token、热门、全量列表依次去重，最多 maxTokens 个
func (r *Radar) TrackedTokens(ctx context.Context) ([]model.TokenRef, model.Source, error) {
	newTokens, source, err := r.NewTokens(ctx)
	if err != nil {
		return nil, "", err
	}
	trending, tSource, err := r.Trending.Discover(ctx)
	if err != nil {
		r.tl.Warn("trending for tracked tokens failed", zap.Error(err))
	}
	return r.trackedFrom(newTokens, trending), source.Merge(tSource), nil
}

func (r *Radar) trackedFrom(newTokens []model.Token, trending []model.TrendingToken) []model.TokenRef {
	seen := map[string]bool{}
	var refs []model.TokenRef
	add := func(t model.Token) bool {
		key := utils.NormalizeAddress(t.Address)
		if key == "" || seen[key] {
			return true
		}
		seen[key] = true
		ref := t.Ref()
		ref.Address = utils.ChecksumAddress(ref.Address)
		refs = append(refs, ref)
		return r.maxTokens <= 0 || len(refs) < r.maxTokens
	}

	for _, t := range newTokens {
		if !add(t) {
			return refs
		}
	}
	for _, t := range trending {
		if !add(t.Token) {
			return refs
		}
	}

	list, err := r.store.LoadTokenList()
	if err != nil {
		r.tl.Warn("load token list failed", zap.Error(err))
	}
	for _, t := range list {
		if !add(t) {
			break
		}
	}
	return refs
}

// resolve 未传 token 时使用默认分析范围
func (r *Radar) resolve(ctx context.Context, refs []model.TokenRef) ([]model.TokenRef, model.Source, error) {
	if len(refs) > 0 {
		return refs, "", nil
	}
	return r.TrackedTokens(ctx)
}

func mergeSources(metrics []model.TokenMetrics, base model.Source) model.Source {
	src := base
	for _, m := range metrics {
		src = src.Merge(m.Source)
	}
	if src == "" {
		src = model.SourceLive
	}
	return src
}

// Compare 抓取指标并横向对比，保存 comparisons.json
func (r *Radar) Compare(ctx context.Context, refs []model.TokenRef) ([]model.ComparisonRow, string, model.Source, error) {
	if len(refs) == 0 {
		return nil, "", "", fmt.Errorf("compare: no tokens")
	}
	metrics, err := r.Metrics.FetchBatched(ctx, refs)
	if err != nil {
		return nil, "", "", err
	}
	rows := Compare(metrics)
	_ = r.store.SaveJSON(store.ComparisonsFile, rows)
	return rows, ComparisonReport(rows), mergeSources(metrics, ""), nil
}

// Recommend 对指定或默认范围内的 token 评分，保存 recommendations.json
func (r *Radar) Recommend(ctx context.Context, refs []model.TokenRef) ([]model.Recommendation, string, model.Source, error) {
	refs, source, err := r.resolve(ctx, refs)
	if err != nil {
		return nil, "", "", err
	}
	metrics, err := r.Metrics.FetchBatched(ctx, refs)
	if err != nil {
		return nil, "", "", err
	}
	recs := RecommendAll(metrics, r.tl)
	_ = r.store.SaveJSON(store.RecommendationsFile, recs)
	return recs, RecommendationReport(recs), mergeSources(metrics, source), nil
}

// FilterResult 过滤接口返回
type FilterResult struct {
	Tokens  []model.TokenMetrics `json:"tokens"`
	Summary model.FilterSummary  `json:"summary"`
	Source  model.Source         `json:"source"`
}

// Filter 对指定或默认范围内的 token 抓取指标后过滤排序，结果同时写 filtered_tokens.csv
func (r *Radar) Filter(ctx context.Context, refs []model.TokenRef, f model.Filter, sortBy string, ascending bool) (FilterResult, error) {
	refs, source, err := r.resolve(ctx, refs)
	if err != nil {
		return FilterResult{}, err
	}
	metrics, err := r.Metrics.FetchBatched(ctx, refs)
	if err != nil {
		return FilterResult{}, err
	}
	matched := ApplyFilter(metrics, f, sortBy, ascending, r.now())
	_ = store.SaveCSV(r.store, store.FilteredTokensCSV, matched, store.MetricsColumns)
	return FilterResult{
		Tokens:  matched,
		Summary: Summarize(len(metrics), matched),
		Source:  mergeSources(metrics, source),
	}, nil
}

// Dashboard 聚合新 token、热门、推荐和对比，保存 dashboard.json 与 token_metrics.json
func (r *Radar) Dashboard(ctx context.Context) (model.Dashboard, error) {
	newTokens, source, err := r.NewTokens(ctx)
	if err != nil {
		return model.Dashboard{}, err
	}
	trending, tSource, err := r.Trending.Discover(ctx)
	if err != nil {
		r.tl.Warn("dashboard trending failed", zap.Error(err))
	}
	source = source.Merge(tSource)

	refs := r.trackedFrom(newTokens, trending)
	metrics, err := r.Metrics.Refresh(ctx, refs)
	if err != nil {
		return model.Dashboard{}, err
	}
	recs := RecommendAll(metrics, r.tl)
	rows := Compare(metrics)

	summary := model.DashboardSummary{
		NewTokenCount:      len(newTokens),
		TrendingCount:      len(trending),
		TrackedTokens:      len(metrics),
		RatingDistribution: RatingDistribution(recs),
	}
	var scoreSum float64
	for _, m := range metrics {
		summary.TotalVolume24h += m.Volume24h
		summary.TotalLiquidity += m.Liquidity
	}
	for _, rec := range recs {
		scoreSum += rec.Score
	}
	if len(recs) > 0 {
		summary.AvgScore = utils.Round(scoreSum/float64(len(recs)), 2)
	}
	summary.TotalVolume24h = utils.Round(summary.TotalVolume24h, 2)
	summary.TotalLiquidity = utils.Round(summary.TotalLiquidity, 2)

	d := model.Dashboard{
		NewTokens:       newTokens,
		Trending:        trending,
		Recommendations: recs,
		Comparison:      rows,
		Summary:         summary,
		Source:          mergeSources(metrics, source),
		GeneratedAt:     r.now(),
	}
	_ = r.store.SaveJSON(store.DashboardFile, d)
	_ = r.store.SaveJSON(store.RecommendationsFile, recs)
	_ = r.store.SaveJSON(store.ComparisonsFile, rows)
	return d, nil
}

// TokenMetrics 单个 token 指标
func (r *Radar) TokenMetrics(ctx context.Context, address string) (model.TokenMetrics, error) {
	return r.Metrics.Fetch(ctx, model.TokenRef{Address: address})
}
