// Package history 把提供方的历史 K 线表规范化为 HistoryBar 序列并附上 MA5、MA20。
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockBoard/internal/cache"
	"stockBoard/internal/indicator"
	"stockBoard/internal/model"
	"stockBoard/internal/trace"
)

const stage = "history"

// DefaultTTL 历史 K 线缓存时长。
const DefaultTTL = time.Hour

// canonicalLabels 提供方列名到规范列名。
var canonicalLabels = map[string]string{
	model.HistDate:   model.ColDate,
	model.HistOpen:   model.ColOpen,
	model.HistHigh:   model.ColHigh,
	model.HistLow:    model.ColLow,
	model.HistClose:  model.ColClose,
	model.HistVolume: model.ColVolume,
}

type Normalizer struct {
	src   Source
	cache *cache.Cache
	ttl   time.Duration
}

// NewNormalizer c 为 nil 时不缓存；ttl<=0 取 DefaultTTL。
func NewNormalizer(src Source, c *cache.Cache, ttl time.Duration) *Normalizer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Normalizer{src: src, cache: c, ttl: ttl}
}

// FetchHistory 拉取 [rng.Start, rng.End] 的前复权 K 线。无数据返回空切片且不报错；
// 区间非法、拉取失败、缺列或任一日期/数值无法解析均返回 *model.FetchError。
func (n *Normalizer) FetchHistory(ctx context.Context, code string, period model.Period, rng model.DateRange) ([]model.HistoryBar, error) {
	code = strings.TrimSpace(code)
	if !rng.Valid() {
		return nil, model.Failed(stage, fmt.Errorf("start %s after end %s", rng.StartCompact(), rng.EndCompact()))
	}
	start, end := rng.StartCompact(), rng.EndCompact()
	key := cache.NewKey(cache.KindHistory, code, string(period), start, end)
	return cache.GetOrFetch(ctx, n.cache, key, n.ttl, func(ctx context.Context) ([]model.HistoryBar, error) {
		frame, err := n.src.HistoryFrame(ctx, code, period, start, end, model.ForwardAdjusted)
		if err != nil {
			trace.Log(ctx, "history: fetch failed code=%s period=%s err=%v", code, period, err)
			return nil, model.Failed(stage, err)
		}
		bars, err := Normalize(frame)
		if err != nil {
			trace.Log(ctx, "history: normalize failed code=%s err=%v", code, err)
			return nil, err
		}
		trace.Log(ctx, "history: code=%s period=%s range=%s-%s bars=%d", code, period, start, end, len(bars))
		return bars, nil
	})
}

// Normalize 改列名、解析日期与开高低收量并计算均线，保持原始行序。
func Normalize(raw model.Frame) ([]model.HistoryBar, error) {
	frame := raw.Rename(canonicalLabels)
	cols := []string{model.ColDate, model.ColOpen, model.ColHigh, model.ColLow, model.ColClose, model.ColVolume}
	idx := make([]int, len(cols))
	for i, c := range cols {
		if idx[i] = frame.Index(c); idx[i] < 0 {
			return nil, model.Failed(stage, fmt.Errorf("missing column %s", c))
		}
	}
	bars := make([]model.HistoryBar, 0, frame.Len())
	for r, row := range frame.Rows {
		cell := func(i int) string {
			if idx[i] < len(row) {
				return strings.TrimSpace(row[idx[i]])
			}
			return ""
		}
		date, err := time.Parse(model.BarDateLayout, cell(0))
		if err != nil {
			return nil, model.Failed(stage, fmt.Errorf("row %d: bad date %q", r, cell(0)))
		}
		var vals [5]float64
		for i := range vals {
			s := cell(i + 1)
			if s == "" {
				return nil, model.Failed(stage, fmt.Errorf("row %d: empty %s", r, cols[i+1]))
			}
			if vals[i], err = model.ParseNumber(s); err != nil {
				return nil, model.Failed(stage, fmt.Errorf("row %d: %s: %w", r, cols[i+1], err))
			}
		}
		bars = append(bars, model.HistoryBar{
			Date:   date,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	indicator.ApplyMA(bars)
	return bars, nil
}
