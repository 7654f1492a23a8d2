package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token-radar/internal/radar"
	"token-radar/internal/radar/config"
	"token-radar/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 初始化配置
	cfg := config.InitConfig()

	// 初始化 trace provider
	tp := logger.InitTrace(cfg.App.Name, "server")
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	// 创建 root logger 并注入 trace 上下文
	opts := logger.DefaultOptions()
	opts.Dir = cfg.Log.Dir
	rootLogger := logger.NewLoggerWithOptions("server", opts)
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)
	defer func() { _ = rootLogger.Sync() }()

	// 配置热加载只影响日志级别，其余配置需要重启
	go config.WatchConfig(&cfg, func(c config.Config) {
		tl.Info("config reloaded", zap.String("logLevel", c.Log.Level))
	})

	core, err := radar.New(cfg, tl)
	if err != nil {
		tl.Fatal("init token radar failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		tl.Info("Starting token radar server...")
		core.Start(ctx)
	}()

	// 监听操作系统信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	tl.Info("Received shutdown signal, starting graceful shutdown...")
	cancel()

	stopCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	core.Stop(stopCtx)
	_ = tp.Shutdown(stopCtx)
}
