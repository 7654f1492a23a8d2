package radar

import (
	"context"
	"testing"
	"time"

	"token-radar/internal/radar/config"
	"token-radar/internal/radar/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) config.Config {
	return config.Config{
		App:      config.AppConfig{Name: "token-radar", Environment: "test", APIVersion: "v1"},
		Exchange: config.ExchangeConfig{Adapter: "market", ChainID: "196", MockFallback: true, Timeout: time.Second},
		Metrics:  config.MetricsConfig{TradeLimit: 20, BatchSize: 4, MaxTokens: 5},
		Trending: config.TrendingConfig{MemeKeywords: []string{"pepe"}, MinVolume: 1000, HighLiquidity: 50000, Limit: 5},
		Discover: config.DiscoverConfig{MaxNewTokens: 10},
		Output:   config.OutputConfig{Dir: t.TempDir()},
		HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0", Prefix: "/api"},
		Jobs:     config.JobsConfig{DiscoverInterval: time.Hour},
	}
}

func TestCoreLifecycle(t *testing.T) {
	cfg := testConfig(t)
	core, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, core.Radar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		core.Start(ctx)
		close(done)
	}()

	// 启动后立即执行一次发现任务
	require.Eventually(t, func() bool {
		ok, err := core.Radar().Store().LoadJSON(store.NewTokensFile, &[]any{})
		return err == nil && ok
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	core.Stop(stopCtx)
}

func TestCoreRejectsUnknownAdapter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Exchange.Adapter = "dexscreener"
	_, err := New(cfg, zap.NewNop())
	assert.Error(t, err)
}
