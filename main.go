// Package main 是 A 股行情看板入口：默认启动终端界面，mode=http 时提供 HTTP 接口与网页。
// 配置见 config.example.yaml，环境变量 STOCKBOARD_* 覆盖文件配置。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stockBoard/internal/api"
	"stockBoard/internal/cache"
	"stockBoard/internal/config"
	"stockBoard/internal/dashboard"
	"stockBoard/internal/history"
	"stockBoard/internal/logx"
	"stockBoard/internal/model"
	"stockBoard/internal/quote"
	"stockBoard/internal/trace"
	"stockBoard/internal/tui"
	"stockBoard/internal/web"
)

// 超时
const (
	redisPingTimeout  = 3 * time.Second
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func init() { _ = godotenv.Load() }

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	var outputs []string
	if cfg.Log.File != "" {
		outputs = append(outputs, cfg.Log.File)
	}
	logger, err := logx.New(cfg.Log.Level, outputs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	logx.Set(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockboard: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	quotes  *quote.Fetcher
	history *history.Normalizer
	board   *dashboard.Service
	close   func()
}

func run(ctx context.Context, cfg *config.Config) error {
	ctx = trace.WithTraceID(ctx, trace.NewTraceID())
	a, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	trace.Log(ctx, "main: start mode=%s cache=%s", cfg.Mode, cfg.Cache.Backend)
	if cfg.Mode == config.ModeHTTP {
		return serveHTTP(ctx, cfg, a)
	}
	return runTUI(ctx, cfg, a)
}

func build(ctx context.Context, cfg *config.Config) (*app, error) {
	client := newProviderClient(cfg.Provider)
	store, closeStore, err := newStore(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	c := cache.New(store)
	a := &app{
		quotes:  quote.NewFetcher(client, c, cfg.Cache.QuoteTTL),
		history: history.NewNormalizer(client, c, cfg.Cache.HistoryTTL),
		close:   closeStore,
	}
	a.board = dashboard.NewService(a.quotes, a.history)
	return a, nil
}

// newProviderClient 按 provider 配置构建东方财富客户端；地址与分页为空时用客户端默认值。
func newProviderClient(p config.Provider) *api.Client {
	c := api.NewClient(
		api.WithHTTPClient(&http.Client{Timeout: p.Timeout}),
		api.WithPacing(p.RequestGap, p.RequestJitter),
		api.WithMaxConcurrent(p.MaxConcurrent),
	)
	if p.SpotURL != "" {
		c.SpotURL = p.SpotURL
	}
	if p.KLineURL != "" {
		c.KLineURL = p.KLineURL
	}
	if p.PageSize > 0 {
		c.PageSize = p.PageSize
	}
	return c
}

// newStore 按配置选择缓存后端，返回的关闭函数停止清理任务或断开 Redis。
func newStore(ctx context.Context, cfg config.Cache) (cache.Store, func(), error) {
	if cfg.Backend == config.CacheRedis {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		return cache.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
	}
	store := cache.NewMemoryStore()
	sweeper, err := cache.StartSweeper(store, cfg.SweepSpec, max(cfg.QuoteTTL, cfg.HistoryTTL))
	if err != nil {
		return nil, nil, err
	}
	return store, func() { <-sweeper.Stop().Done() }, nil
}

func runTUI(ctx context.Context, cfg *config.Config, a *app) error {
	period, _ := model.ParsePeriod(cfg.Defaults.Period)
	initial := dashboard.Query{Code: cfg.Defaults.Code, Period: period, LookbackDays: cfg.Defaults.LookbackDays}
	m := tui.New(ctx, a.board, initial, tui.NewStyles(cfg.Chart.IncreasingColor, cfg.Chart.DecreasingColor))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, a *app) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           web.NewRouter(web.NewServer(a.quotes, a.history, a.board, cfg.Chart)),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logx.L().Info("main: http listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logx.L().Info("main: shutting down")
	return srv.Shutdown(shutdownCtx)
}
