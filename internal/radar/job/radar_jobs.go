package job

import (
	"context"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/dao"
	"token-radar/internal/radar/monitor"
	"token-radar/internal/radar/service"

	"go.uber.org/zap"
)

const (
	JobDiscover  = "discover"
	JobTrending  = "trending"
	JobDashboard = "dashboard"
)

// RegisterRadarJobs 注册发现、热门、看板刷新任务；tokenDAO 为 nil 时不回写行情
func RegisterRadarJobs(s *Scheduler, cfg config.JobsConfig, radar *service.Radar, tokenDAO dao.TokenDAO, logger *zap.Logger) {
	s.RegisterJob(JobDiscover, cfg.DiscoverInterval, func(ctx context.Context) error {
		res, err := radar.Discover(ctx)
		if err != nil {
			return err
		}
		monitor.NewTokensDiscovered.Add(float64(len(res.NewTokens)))
		logger.Info("discover job done",
			zap.Int("new", len(res.NewTokens)),
			zap.Int("total", res.TotalTokens),
			zap.String("source", string(res.Source)))
		return nil
	})

	s.RegisterJob(JobTrending, cfg.TrendingInterval, func(ctx context.Context) error {
		tokens, source, err := radar.Trending.Discover(ctx)
		if err != nil {
			return err
		}
		logger.Info("trending job done", zap.Int("count", len(tokens)), zap.String("source", string(source)))
		return nil
	})

	s.RegisterJob(JobDashboard, cfg.DashboardInterval, func(ctx context.Context) error {
		d, err := radar.Dashboard(ctx)
		if err != nil {
			return err
		}
		if tokenDAO != nil {
			if err := tokenDAO.UpdateMarket(ctx, d.Comparison); err != nil {
				logger.Warn("update token market snapshot failed", zap.Error(err))
			}
		}
		logger.Info("dashboard job done",
			zap.Int("tracked", d.Summary.TrackedTokens),
			zap.Float64("avgScore", d.Summary.AvgScore))
		return nil
	})
}
