// Package dashboard 串起一次查询：先取实时行情，命中后再取历史 K 线，生成指标面板与图表数据。
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"stockBoard/internal/model"
	"stockBoard/internal/trace"
)

// 回看天数
const (
	MinLookbackDays     = 30
	MaxLookbackDays     = 1095
	DefaultLookbackDays = 120
	LookbackStep        = 30
)

// Status 一次查询的结果分类。
type Status string

const (
	StatusOK            Status = "ok"
	StatusInvalid       Status = "invalid"
	StatusNotFound      Status = "not_found"
	StatusQuoteFailed   Status = "quote_failed"
	StatusHistoryFailed Status = "history_failed"
	StatusEmptyHistory  Status = "empty_history"
)

// Query 代码、周期与回看天数。
type Query struct {
	Code         string       `json:"code"`
	Period       model.Period `json:"period"`
	LookbackDays int          `json:"lookback_days"`
}

// Normalize 去空白，周期为空取 daily，回看为 0 取默认值。
func (q Query) Normalize() Query {
	q.Code = strings.TrimSpace(q.Code)
	if q.Period == "" {
		q.Period = model.Daily
	}
	if q.LookbackDays == 0 {
		q.LookbackDays = DefaultLookbackDays
	}
	return q
}

func (q Query) Validate() error {
	if _, err := model.ParsePeriod(string(q.Period)); err != nil {
		return err
	}
	if q.LookbackDays < MinLookbackDays || q.LookbackDays > MaxLookbackDays {
		return fmt.Errorf("%w: lookback_days %d not in [%d, %d]", model.ErrInvalidQuery, q.LookbackDays, MinLookbackDays, MaxLookbackDays)
	}
	return nil
}

// ClampLookback 限制到 [MinLookbackDays, MaxLookbackDays]。
func ClampLookback(days int) int {
	return min(max(days, MinLookbackDays), MaxLookbackDays)
}

// Direction 涨跌方向，决定配色。
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

func directionOf(change float64) Direction {
	switch {
	case change > 0:
		return Up
	case change < 0:
		return Down
	default:
		return Flat
	}
}

// Metrics 指标面板。
type Metrics struct {
	Title      string    `json:"title"` // 贵州茅台 (600519)
	Last       string    `json:"last"`
	Delta      string    `json:"delta"` // "10.0 (0.59%)"
	High       string    `json:"high"`
	Low        string    `json:"low"`
	VolumeLots float64   `json:"volume_lots"`
	Volume     string    `json:"volume"` // 千分位，取整
	Direction  Direction `json:"direction"`
}

// NewMetrics 由行情生成面板文字。
func NewMetrics(q model.Quote) Metrics {
	lots := decimal.NewFromFloat(q.Volume).Div(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	return Metrics{
		Title:      fmt.Sprintf("%s (%s)", q.Name, q.Code),
		Last:       numText(q.Last),
		Delta:      fmt.Sprintf("%s (%s%%)", numText(q.Change), numText(q.ChangePct)),
		High:       numText(q.High),
		Low:        numText(q.Low),
		VolumeLots: lots,
		Volume:     humanize.Comma(int64(math.RoundToEven(lots))),
		Direction:  directionOf(q.Change),
	}
}

// numText 最短十进制表示，整数保留一位小数（1700.0），与行情软件显示一致。
func numText(f float64) string {
	d := decimal.NewFromFloat(f)
	if d.IsInteger() {
		return d.StringFixed(1)
	}
	return d.String()
}

// Result 一次查询的全部输出。Bars 为按日期升序的原始序列。
type Result struct {
	Query      Query              `json:"query"`
	Range      model.DateRange    `json:"-"`
	Status     Status             `json:"status"`
	Quote      *model.Quote       `json:"quote,omitempty"`
	Metrics    *Metrics           `json:"metrics,omitempty"`
	Bars       []model.HistoryBar `json:"bars"`
	ChartTitle string             `json:"chart_title,omitempty"`
	Err        error              `json:"-"`
}

// HasChart 有 K 线可画。
func (r Result) HasChart() bool { return len(r.Bars) > 0 }

// QuoteFetcher quote.Fetcher 实现。
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, code string) (model.Quote, error)
}

// HistoryFetcher history.Normalizer 实现。
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, code string, period model.Period, rng model.DateRange) ([]model.HistoryBar, error)
}

type Service struct {
	quotes  QuoteFetcher
	history HistoryFetcher
	now     func() time.Time
}

// Option 调整 Service。
type Option func(*Service)

// WithClock 替换时钟（测试注入）。
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(quotes QuoteFetcher, history HistoryFetcher, opts ...Option) *Service {
	s := &Service{quotes: quotes, history: history, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run 执行一次查询。行情未命中不拉历史；历史失败保留指标面板。
func (s *Service) Run(ctx context.Context, q Query) Result {
	ctx = trace.Ensure(ctx)
	q = q.Normalize()
	res := Result{Query: q}
	if err := q.Validate(); err != nil {
		res.Status, res.Err = StatusInvalid, err
		return res
	}
	res.Range = model.RangeFromLookback(s.now(), q.LookbackDays)
	trace.Log(ctx, "dashboard: run code=%s period=%s range=%s-%s", q.Code, q.Period, res.Range.StartCompact(), res.Range.EndCompact())

	quote, err := s.quotes.FetchQuote(ctx, q.Code)
	switch {
	case errors.Is(err, model.ErrNotFound):
		res.Status, res.Err = StatusNotFound, err
		return res
	case err != nil:
		res.Status, res.Err = StatusQuoteFailed, err
		return res
	}
	m := NewMetrics(quote)
	res.Quote, res.Metrics = &quote, &m

	bars, err := s.history.FetchHistory(ctx, q.Code, q.Period, res.Range)
	if err != nil {
		res.Status, res.Err = StatusHistoryFailed, err
		trace.Log(ctx, "dashboard: history failed code=%s err=%v", q.Code, err)
		return res
	}
	res.Bars = bars
	if len(bars) == 0 {
		res.Status = StatusEmptyHistory
		return res
	}
	res.Status = StatusOK
	res.ChartTitle = q.Period.Title() + " K-Line Chart"
	trace.Log(ctx, "dashboard: done code=%s bars=%d", q.Code, len(bars))
	return res
}

// Descending 返回按日期降序的副本，不改动入参。
func Descending(bars []model.HistoryBar) []model.HistoryBar {
	out := make([]model.HistoryBar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
