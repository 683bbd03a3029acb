// Package config 从 YAML 文件加载配置，再被 STOCKBOARD_* 环境变量覆盖，最后补默认值。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stockBoard/internal/api"
	"stockBoard/internal/dashboard"
	"stockBoard/internal/model"
)

// 配置路径与环境变量名
const (
	defaultConfigPath = "config.yaml"
	envConfigPath     = "STOCKBOARD_CONFIG"
	envMode           = "STOCKBOARD_MODE"
	envHTTPAddr       = "STOCKBOARD_HTTP_ADDR"
	envLogLevel       = "STOCKBOARD_LOG_LEVEL"
	envLogFile        = "STOCKBOARD_LOG_FILE"
	envHTTPTimeoutMS  = "STOCKBOARD_API_TIMEOUT_MS"
	envAPIDelayMS     = "STOCKBOARD_API_DELAY_MS"
	envAPIJitterMS    = "STOCKBOARD_API_JITTER_MS"
	envAPIMaxConc     = "STOCKBOARD_API_MAX_CONCURRENT"
	envCacheBackend   = "STOCKBOARD_CACHE_BACKEND"
	envRedisAddr      = "STOCKBOARD_REDIS_ADDR"
	envRedisPassword  = "STOCKBOARD_REDIS_PASSWORD"
	envRedisDB        = "STOCKBOARD_REDIS_DB"
	envIncColor       = "STOCKBOARD_INCREASING_COLOR"
	envDecColor       = "STOCKBOARD_DECREASING_COLOR"
	envDefaultCode    = "STOCKBOARD_CODE"
)

// 运行模式
const (
	ModeTUI  = "tui"
	ModeHTTP = "http"
)

// 缓存后端
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// 默认值
const (
	defaultHTTPAddr      = ":8080"
	defaultLogLevel      = "info"
	defaultLogFileTUI    = "stockboard.log"
	defaultHTTPTimeout   = 10 * time.Second
	defaultPageSize      = 100
	defaultRequestGap    = 200 * time.Millisecond
	defaultRequestJitter = 150 * time.Millisecond
	defaultMaxConcurrent = 4
	maxConcurrentCap     = 20
	defaultQuoteTTL      = 60 * time.Second
	defaultHistoryTTL    = time.Hour
	defaultSweepSpec     = "@every 5m"
	defaultRedisAddr     = "localhost:6379"
	defaultIncColor      = "9"  // 红涨
	defaultDecColor      = "10" // 绿跌
	defaultCode          = "600519"
)

type Config struct {
	Mode     string   `yaml:"mode"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Provider Provider `yaml:"provider"`
	Cache    Cache    `yaml:"cache"`
	Chart    Chart    `yaml:"chart"`
	Defaults Defaults `yaml:"defaults"`
}

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Provider 东方财富接口地址、超时、分页与节流。
type Provider struct {
	SpotURL       string        `yaml:"spot_url"`
	KLineURL      string        `yaml:"kline_url"`
	Timeout       time.Duration `yaml:"timeout"`
	PageSize      int           `yaml:"page_size"`
	RequestGap    time.Duration `yaml:"request_gap"`
	RequestJitter time.Duration `yaml:"request_jitter"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

// Cache 快照 60 秒、历史 1 小时；SweepSpec 为内存缓存清理的 cron 表达式。
type Cache struct {
	Backend    string        `yaml:"backend"`
	QuoteTTL   time.Duration `yaml:"quote_ttl"`
	HistoryTTL time.Duration `yaml:"history_ttl"`
	SweepSpec  string        `yaml:"sweep_spec"`
	Redis      Redis         `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Chart 涨跌颜色（lipgloss 颜色值或网页 CSS 颜色），A 股默认红涨绿跌。
type Chart struct {
	IncreasingColor string `yaml:"increasing_color"`
	DecreasingColor string `yaml:"decreasing_color"`
}

// Defaults 启动时界面预填的查询。
type Defaults struct {
	Code         string `yaml:"code"`
	Period       string `yaml:"period"`
	LookbackDays int    `yaml:"lookback_days"`
}

// Load 先读 envConfigPath 指定文件（默认 config.yaml，不存在不报错），再被环境变量覆盖，最后补默认值。
func Load() (*Config, error) {
	path := os.Getenv(envConfigPath)
	if path == "" {
		path = defaultConfigPath
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(envMode); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv(envHTTPAddr); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(envLogFile); v != "" {
		cfg.Log.File = v
	}
	if ms, ok := envInt(envHTTPTimeoutMS); ok && ms > 0 {
		cfg.Provider.Timeout = time.Duration(ms) * time.Millisecond
	}
	if ms, ok := envInt(envAPIDelayMS); ok {
		cfg.Provider.RequestGap = time.Duration(ms) * time.Millisecond
	}
	if ms, ok := envInt(envAPIJitterMS); ok {
		cfg.Provider.RequestJitter = time.Duration(ms) * time.Millisecond
	}
	if n, ok := envInt(envAPIMaxConc); ok && n > 0 {
		cfg.Provider.MaxConcurrent = n
	}
	if v := os.Getenv(envCacheBackend); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv(envRedisAddr); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv(envRedisPassword); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if n, ok := envInt(envRedisDB); ok && n >= 0 {
		cfg.Cache.Redis.DB = n
	}
	if v := os.Getenv(envIncColor); v != "" {
		cfg.Chart.IncreasingColor = v
	}
	if v := os.Getenv(envDecColor); v != "" {
		cfg.Chart.DecreasingColor = v
	}
	if v := os.Getenv(envDefaultCode); v != "" {
		cfg.Defaults.Code = v
	}
}

func envInt(key string) (int, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func applyDefaults(cfg *Config) {
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if cfg.Mode == "" {
		cfg.Mode = ModeTUI
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = defaultHTTPAddr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	// 终端界面占用 stdout/stderr，日志默认写文件
	if cfg.Log.File == "" && cfg.Mode == ModeTUI {
		cfg.Log.File = defaultLogFileTUI
	}
	p := &cfg.Provider
	if p.SpotURL == "" {
		p.SpotURL = api.EastMoneySpotURL
	}
	if p.KLineURL == "" {
		p.KLineURL = api.EastMoneyKLineURL
	}
	if p.Timeout <= 0 {
		p.Timeout = defaultHTTPTimeout
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	// 间隔与抖动：未配置取默认，负数关闭
	if p.RequestGap < 0 {
		p.RequestGap = 0
	} else if p.RequestGap == 0 {
		p.RequestGap = defaultRequestGap
	}
	if p.RequestJitter < 0 {
		p.RequestJitter = 0
	} else if p.RequestJitter == 0 {
		p.RequestJitter = defaultRequestJitter
	}
	if p.MaxConcurrent <= 0 {
		p.MaxConcurrent = defaultMaxConcurrent
	}
	if p.MaxConcurrent > maxConcurrentCap {
		p.MaxConcurrent = maxConcurrentCap
	}
	c := &cfg.Cache
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = CacheMemory
	}
	if c.QuoteTTL <= 0 {
		c.QuoteTTL = defaultQuoteTTL
	}
	if c.HistoryTTL <= 0 {
		c.HistoryTTL = defaultHistoryTTL
	}
	if c.SweepSpec == "" {
		c.SweepSpec = defaultSweepSpec
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}
	if cfg.Chart.IncreasingColor == "" {
		cfg.Chart.IncreasingColor = defaultIncColor
	}
	if cfg.Chart.DecreasingColor == "" {
		cfg.Chart.DecreasingColor = defaultDecColor
	}
	d := &cfg.Defaults
	if strings.TrimSpace(d.Code) == "" {
		d.Code = defaultCode
	}
	if d.Period == "" {
		d.Period = string(model.Daily)
	}
	if d.LookbackDays == 0 {
		d.LookbackDays = dashboard.DefaultLookbackDays
	}
}

// Validate 检查模式、缓存后端、默认查询取值范围。
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeTUI, ModeHTTP:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeTUI, ModeHTTP, c.Mode)
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got %q", CacheMemory, CacheRedis, c.Cache.Backend)
	}
	switch c.Defaults.Period {
	case "daily", "weekly", "monthly":
	default:
		return fmt.Errorf("defaults.period must be daily, weekly or monthly, got %q", c.Defaults.Period)
	}
	if c.Defaults.LookbackDays < dashboard.MinLookbackDays || c.Defaults.LookbackDays > dashboard.MaxLookbackDays {
		return fmt.Errorf("defaults.lookback_days must be within [%d, %d]", dashboard.MinLookbackDays, dashboard.MaxLookbackDays)
	}
	return nil
}
