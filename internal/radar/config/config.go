package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"token-radar/pkg/logger"
	"token-radar/pkg/scraper"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 定义整个配置的结构
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Trending TrendingConfig `mapstructure:"trending"`
	Discover DiscoverConfig `mapstructure:"discover"`
	Output   OutputConfig   `mapstructure:"output"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Database DatabaseConfig `mapstructure:"database"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	APIVersion  string `mapstructure:"api_version"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// ExchangeConfig 上游交易所 API 配置
type ExchangeConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	SecretKey         string        `mapstructure:"secret_key"`
	Passphrase        string        `mapstructure:"passphrase"`
	Adapter           string        `mapstructure:"adapter"` // market | aggregator
	ChainID           string        `mapstructure:"chain_id"`
	UseRealAPI        bool          `mapstructure:"use_real_api"`
	MockFallback      bool          `mapstructure:"mock_fallback"`
	EnableRateLimit   bool          `mapstructure:"enable_rate_limit"`
	RateLimitInterval time.Duration `mapstructure:"rate_limit_interval"`
	RateLimitBurst    int           `mapstructure:"rate_limit_burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
	BreakerFailures   uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout"`
}

// HasCredentials 三项凭证是否齐全
func (e ExchangeConfig) HasCredentials() bool {
	return e.APIKey != "" && e.SecretKey != "" && e.Passphrase != ""
}

type CacheConfig struct {
	Enable       bool          `mapstructure:"enable"`
	TokenListTTL time.Duration `mapstructure:"token_list_ttl"`
	TickerTTL    time.Duration `mapstructure:"ticker_ttl"`
	TradesTTL    time.Duration `mapstructure:"trades_ttl"`
	TrendingTTL  time.Duration `mapstructure:"trending_ttl"`
}

// MetricsConfig 单 token 指标抓取配置
type MetricsConfig struct {
	TradeLimit int           `mapstructure:"trade_limit"`
	ItemDelay  time.Duration `mapstructure:"item_delay"`
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
	MaxTokens  int           `mapstructure:"max_tokens"`
}

type TrendingConfig struct {
	MemeKeywords  []string          `mapstructure:"meme_keywords"`
	MinVolume     float64           `mapstructure:"min_volume"`
	HighLiquidity float64           `mapstructure:"high_liquidity"`
	Limit         int               `mapstructure:"limit"`
	ScrapeURL     string            `mapstructure:"scrape_url"`
	Selectors     scraper.Selectors `mapstructure:"selectors"`
}

type DiscoverConfig struct {
	NewTokenMaxAge time.Duration `mapstructure:"new_token_max_age"`
	MaxNewTokens   int           `mapstructure:"max_new_tokens"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	Prefix       string        `mapstructure:"prefix"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
}

// JobsConfig 定时任务间隔，0 表示不注册
type JobsConfig struct {
	DiscoverInterval  time.Duration `mapstructure:"discover_interval"`
	TrendingInterval  time.Duration `mapstructure:"trending_interval"`
	DashboardInterval time.Duration `mapstructure:"dashboard_interval"`
}

// RedisConfig Redis 配置，Address 为空时不启用
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig Brokers 为空时不发布事件
type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	TopicToken string `mapstructure:"topic_token"`
}

// DatabaseConfig DSN 为空时不镜像到数据库
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

var defaults = map[string]any{
	"app.name":        "token-radar",
	"app.environment": "development",
	"app.api_version": "v1",

	"log.level": "info",
	"log.dir":   "logs",

	"exchange.base_url":            "https://web3.okx.com",
	"exchange.adapter":             "market",
	"exchange.chain_id":            "196",
	"exchange.use_real_api":        false,
	"exchange.mock_fallback":       true,
	"exchange.enable_rate_limit":   true,
	"exchange.rate_limit_interval": 150 * time.Millisecond,
	"exchange.rate_limit_burst":    1,
	"exchange.timeout":             10 * time.Second,
	"exchange.breaker_failures":    5,
	"exchange.breaker_timeout":     30 * time.Second,

	"cache.enable":         true,
	"cache.token_list_ttl": 5 * time.Minute,
	"cache.ticker_ttl":     30 * time.Second,
	"cache.trades_ttl":     30 * time.Second,
	"cache.trending_ttl":   2 * time.Minute,

	"metrics.trade_limit": 100,
	"metrics.item_delay":  200 * time.Millisecond,
	"metrics.batch_size":  5,
	"metrics.batch_delay": time.Second,
	"metrics.max_tokens":  20,

	"trending.meme_keywords":  []string{"doge", "pepe", "shib", "inu", "moon", "elon", "wojak", "floki", "meme", "cat", "frog", "bonk"},
	"trending.min_volume":     1000.0,
	"trending.high_liquidity": 50000.0,
	"trending.limit":          20,
	"trending.scrape_url":     "",
	"trending.selectors.row":  "table tbody tr",
	"trending.selectors.fields": map[string]string{
		"symbol":  "td.symbol",
		"name":    "td.name",
		"address": "a.token@data-address",
		"price":   "td.price",
		"volume":  "td.volume",
		"change":  "td.change",
	},
	"trending.selectors.max_rows": 50,

	"discover.new_token_max_age": 72 * time.Hour,
	"discover.max_new_tokens":    50,

	"output.dir": "output",

	"http.addr":          ":3001",
	"http.prefix":        "/api",
	"http.read_timeout":  15 * time.Second,
	"http.write_timeout": 60 * time.Second,
	"http.allow_origins": []string{"http://localhost:3000"},

	"jobs.discover_interval":  10 * time.Minute,
	"jobs.trending_interval":  15 * time.Minute,
	"jobs.dashboard_interval": 30 * time.Minute,

	"redis.address": "",
	"redis.db":      0,

	"kafka.brokers":     "",
	"kafka.topic_token": "token.discovered",

	"database.driver": "postgres",
	"database.dsn":    "",

	"monitor.enable":          false,
	"monitor.prometheus_addr": ":9091",
}

// 历史环境变量名到配置项的映射，其余配置项也可通过 RADAR_<SECTION>_<KEY> 覆盖
var envBindings = map[string][]string{
	"app.environment":            {"APP_ENV", "NODE_ENV"},
	"log.level":                  {"LOG_LEVEL"},
	"exchange.base_url":          {"OKX_BASE_URL", "API_BASE_URL"},
	"exchange.api_key":           {"OKX_API_KEY"},
	"exchange.secret_key":        {"OKX_SECRET_KEY"},
	"exchange.passphrase":        {"OKX_PASSPHRASE"},
	"exchange.adapter":           {"OKX_ADAPTER"},
	"exchange.chain_id":          {"CHAIN_ID"},
	"exchange.use_real_api":      {"USE_REAL_API"},
	"exchange.mock_fallback":     {"MOCK_FALLBACK"},
	"exchange.enable_rate_limit": {"ENABLE_RATE_LIMIT"},
	"cache.enable":               {"ENABLE_CACHE"},
	"cache.token_list_ttl":       {"CACHE_TTL_TOKEN_LIST"},
	"cache.ticker_ttl":           {"CACHE_TTL_TICKER"},
	"cache.trades_ttl":           {"CACHE_TTL_TRADES"},
	"cache.trending_ttl":         {"CACHE_TTL_TRENDING"},
	"trending.meme_keywords":     {"MEME_KEYWORDS"},
	"trending.min_volume":        {"TRENDING_MIN_VOLUME"},
	"trending.high_liquidity":    {"TRENDING_HIGH_LIQUIDITY"},
	"trending.limit":             {"TRENDING_LIMIT"},
	"trending.scrape_url":        {"SCRAPE_URL"},
	"output.dir":                 {"OUTPUT_DIR"},
	"http.prefix":                {"API_PREFIX"},
	"http.addr":                  {"HTTP_ADDR"},
	"redis.address":              {"REDIS_ADDRESS"},
	"redis.password":             {"REDIS_PASSWORD"},
	"kafka.brokers":              {"KAFKA_BROKERS"},
	"database.driver":            {"DB_DRIVER"},
	"database.dsn":               {"DB_DSN"},
	"monitor.enable":             {"MONITOR_ENABLE"},
	"monitor.prometheus_addr":    {"PROMETHEUS_ADDR"},
}

// 以数字给出的时长环境变量，按单位换算后覆盖对应配置项
var numericDurationEnvs = []struct {
	key  string
	env  string
	unit time.Duration
}{
	{"exchange.rate_limit_interval", "RATE_LIMIT_INTERVAL_MS", time.Millisecond},
	{"discover.new_token_max_age", "NEW_TOKEN_MAX_AGE_HOURS", time.Hour},
}

func numericKey(env string) string { return "env." + strings.ToLower(env) }

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for k, envs := range envBindings {
		_ = v.BindEnv(append([]string{k}, envs...)...)
	}
	for _, n := range numericDurationEnvs {
		_ = v.BindEnv(numericKey(n.env), n.env)
	}
	v.SetEnvPrefix("RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config.server")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config/")
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return cfg, err
	}
	if err := applyNumericDurations(v, &cfg); err != nil {
		return cfg, err
	}
	normalize(&cfg)
	return cfg, nil
}

func applyNumericDurations(v *viper.Viper, cfg *Config) error {
	for _, n := range numericDurationEnvs {
		raw := strings.TrimSpace(v.GetString(numericKey(n.env)))
		if raw == "" {
			continue
		}
		num, err := strconv.ParseFloat(raw, 64)
		if err != nil || num < 0 {
			return fmt.Errorf("invalid %s %q: want a non-negative number", n.env, raw)
		}
		d := time.Duration(num * float64(n.unit))
		switch n.key {
		case "exchange.rate_limit_interval":
			cfg.Exchange.RateLimitInterval = d
		case "discover.new_token_max_age":
			cfg.Discover.NewTokenMaxAge = d
		}
	}
	return nil
}

// normalize 修正环境变量里常见的写法差异
func normalize(cfg *Config) {
	for i, k := range cfg.Trending.MemeKeywords {
		cfg.Trending.MemeKeywords[i] = strings.ToLower(strings.TrimSpace(k))
	}
	if cfg.HTTP.Prefix != "" && !strings.HasPrefix(cfg.HTTP.Prefix, "/") {
		cfg.HTTP.Prefix = "/" + cfg.HTTP.Prefix
	}
	cfg.HTTP.Prefix = strings.TrimSuffix(cfg.HTTP.Prefix, "/")
	cfg.Exchange.BaseURL = strings.TrimSuffix(cfg.Exchange.BaseURL, "/")
	cfg.Exchange.Adapter = strings.ToLower(cfg.Exchange.Adapter)
}

// Load 读取 .env、可选的 config/config.server.yaml 与环境变量
func Load() (Config, error) {
	_ = godotenv.Load()

	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		// 配置文件可选
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return decode(v)
}

// InitConfig 同 Load，失败直接 panic，供 main 使用
func InitConfig() Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}
	return cfg
}

// WatchConfig 配置文件变更时热加载并更新日志级别
func WatchConfig(cfg *Config, onChange func(Config)) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		newConfig, err := decode(v)
		if err != nil {
			return
		}
		*cfg = newConfig
		logger.SetLogLevel(newConfig.Log.Level)
		if onChange != nil {
			onChange(newConfig)
		}
	})
	v.WatchConfig()
}
