package radar

import (
	"context"
	"time"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/dao"
	"token-radar/internal/radar/exchange"
	"token-radar/internal/radar/handler"
	"token-radar/internal/radar/job"
	"token-radar/internal/radar/model"
	"token-radar/internal/radar/monitor"
	"token-radar/internal/radar/repository"
	"token-radar/internal/radar/service"
	"token-radar/internal/radar/store"
	"token-radar/internal/radar/writer"
	"token-radar/pkg/cache"
	"token-radar/pkg/httpclient"
	"token-radar/pkg/ratelimit"
	"token-radar/pkg/scraper"

	"go.uber.org/zap"
)

type Core struct {
	cfg       config.Config
	tl        *zap.Logger
	repo      repository.Repository
	radar     *service.Radar
	scheduler *job.Scheduler
	server    *handler.Server
	metrics   *monitor.MetricsServer
	publisher *writer.AsyncBatchWriter[model.Token] // 未配置 kafka 时为 nil
	cancel    context.CancelFunc
}

// New 组装所有组件；redis、kafka、数据库均为可选
func New(cfg config.Config, logger *zap.Logger) (*Core, error) {
	repo := repository.New(cfg, logger)

	ttlCache := cache.NewTTLCache(logger, repo.GetRDB(), "radar:")
	limiter := ratelimit.NewKeyedLimiter(cfg.Exchange.RateLimitInterval, cfg.Exchange.RateLimitBurst)

	client, err := exchange.NewClient(cfg.Exchange, cfg.Cache, ttlCache, limiter, logger)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	client.OnResult(func(kind exchange.Kind, source model.Source) {
		monitor.ExchangeRequests.WithLabelValues(string(kind), string(source)).Inc()
	})

	fs := store.New(cfg.Output.Dir, logger)
	pageScraper := scraper.New(httpclient.NewHTTPClient(httpclient.HTTPClientConfig{
		Timeout:    cfg.Exchange.Timeout,
		MaxRetries: 1,
		UserAgent:  "Mozilla/5.0 (compatible; token-radar/1.0)",
	}, logger), logger)

	core := &Core{
		cfg:       cfg,
		tl:        logger,
		repo:      repo,
		scheduler: job.NewScheduler(logger),
		metrics:   monitor.NewMetricsServer(cfg.Monitor, logger),
	}

	var publisher service.TokenPublisher
	if mq := repo.GetMQ(); mq != nil {
		kw := writer.NewKafkaTokenWriter(mq, logger, cfg.Kafka.TopicToken)
		core.publisher = writer.NewAsyncBatchWriter[model.Token](logger, kw, 100, time.Second, "token_discovered", 1)
		ctx, cancel := context.WithCancel(context.Background())
		core.cancel = cancel
		core.publisher.Start(ctx)
		publisher = writer.NewTokenPublisher(core.publisher)
	}

	var mirror service.TokenMirror
	var tokenDAO dao.TokenDAO
	if db := repo.GetDB(); db != nil {
		tokenDAO = dao.NewTokenDAO(db, cfg.Trending.MemeKeywords)
		mirror = tokenDAO
	}

	core.radar = service.NewRadar(
		service.NewDiscoveryService(cfg.Discover, client, fs, publisher, mirror, logger),
		service.NewMetricsService(cfg.Metrics, client, fs, logger),
		service.NewTrendingService(cfg.Trending, client, pageScraper, fs, logger),
		fs, cfg.Metrics.MaxTokens, logger,
	)
	core.server = handler.NewServer(cfg, core.radar, logger)
	job.RegisterRadarJobs(core.scheduler, cfg.Jobs, core.radar, tokenDAO, logger)

	logger.Info("token radar initialized",
		zap.String("adapter", cfg.Exchange.Adapter),
		zap.String("chainId", cfg.Exchange.ChainID),
		zap.Bool("useRealAPI", cfg.Exchange.UseRealAPI),
		zap.Bool("mockFallback", cfg.Exchange.MockFallback),
		zap.Bool("kafka", publisher != nil),
		zap.Bool("mirror", mirror != nil))
	return core, nil
}

// Radar 供 CLI 直接调用
func (c *Core) Radar() *service.Radar { return c.radar }

// Start 启动监控、HTTP 服务和调度器，阻塞到 ctx 结束
func (c *Core) Start(ctx context.Context) {
	c.tl.Info("Starting token radar core...")
	c.metrics.Run()
	c.server.Start()
	c.scheduler.Start(ctx)
	c.tl.Info("Token radar started successfully")

	<-ctx.Done()
	c.tl.Info("Shutting down token radar due to context cancellation...")
}

// Stop 优雅关闭所有资源
func (c *Core) Stop(ctx context.Context) {
	c.tl.Info("Stopping token radar core...")

	if err := c.server.Shutdown(ctx); err != nil {
		c.tl.Warn("http server shutdown failed", zap.Error(err))
	}
	c.scheduler.Stop(ctx)
	if err := c.metrics.Stop(ctx); err != nil {
		c.tl.Warn("metrics server shutdown failed", zap.Error(err))
	}
	c.Close()

	c.tl.Info("Token radar core stopped.")
}

// Close 刷出待发布事件并关闭外部连接，CLI 直接调用
func (c *Core) Close() {
	if c.publisher != nil {
		c.publisher.Close()
		c.cancel()
		c.publisher = nil
	}
	if err := c.repo.Close(); err != nil {
		c.tl.Warn("repository close failed", zap.Error(err))
	}
}
