// Package quote 从全市场快照中取出单只证券的实时行情。
package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockBoard/internal/cache"
	"stockBoard/internal/model"
	"stockBoard/internal/trace"
)

const stage = "quote"

// DefaultTTL 行情缓存时长。
const DefaultTTL = 60 * time.Second

type Fetcher struct {
	src   SnapshotSource
	cache *cache.Cache
	ttl   time.Duration
}

// NewFetcher c 为 nil 时不缓存；ttl<=0 取 DefaultTTL。
func NewFetcher(src SnapshotSource, c *cache.Cache, ttl time.Duration) *Fetcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Fetcher{src: src, cache: c, ttl: ttl}
}

// FetchQuote 代码精确匹配快照中的一行。没有匹配返回 model.ErrNotFound；
// 拉取或解析失败返回 *model.FetchError。只缓存成功结果。
func (f *Fetcher) FetchQuote(ctx context.Context, code string) (model.Quote, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Quote{}, model.ErrNotFound
	}
	return cache.GetOrFetch(ctx, f.cache, cache.NewKey(cache.KindQuote, code), f.ttl, func(ctx context.Context) (model.Quote, error) {
		return f.fetch(ctx, code)
	})
}

func (f *Fetcher) fetch(ctx context.Context, code string) (model.Quote, error) {
	frame, err := f.src.Snapshot(ctx)
	if err != nil {
		trace.Log(ctx, "quote: snapshot failed code=%s err=%v", code, err)
		return model.Quote{}, model.Failed(stage, err)
	}
	q, err := Match(frame, code)
	if err != nil {
		trace.Log(ctx, "quote: code=%s rows=%d err=%v", code, frame.Len(), err)
		return model.Quote{}, err
	}
	trace.Log(ctx, "quote: code=%s name=%s last=%.2f", q.Code, q.Name, q.Last)
	return q, nil
}

// Match 在快照表中找代码完全相同的行并映射为 Quote。
func Match(frame model.Frame, code string) (model.Quote, error) {
	codeIdx := frame.Index(model.SpotCode)
	if codeIdx < 0 {
		return model.Quote{}, model.Failed(stage, fmt.Errorf("missing column %s", model.SpotCode))
	}
	for i, row := range frame.Rows {
		if codeIdx < len(row) && strings.TrimSpace(row[codeIdx]) == code {
			return toQuote(frame, i)
		}
	}
	return model.Quote{}, model.ErrNotFound
}

func toQuote(frame model.Frame, row int) (model.Quote, error) {
	code, _ := frame.Cell(row, model.SpotCode)
	name, _ := frame.Cell(row, model.SpotName)
	q := model.Quote{Code: strings.TrimSpace(code), Name: strings.TrimSpace(name)}
	nums := []struct {
		label string
		dst   *float64
	}{
		{model.SpotLast, &q.Last},
		{model.SpotChange, &q.Change},
		{model.SpotChangePct, &q.ChangePct},
		{model.SpotHigh, &q.High},
		{model.SpotLow, &q.Low},
		{model.SpotVolume, &q.Volume},
		{model.SpotAmount, &q.Amount},
	}
	for _, n := range nums {
		s, ok := frame.Cell(row, n.label)
		if !ok {
			return model.Quote{}, model.Failed(stage, fmt.Errorf("missing column %s", n.label))
		}
		v, err := model.ParseNumber(s)
		if err != nil {
			return model.Quote{}, model.Failed(stage, fmt.Errorf("%s: %w", n.label, err))
		}
		*n.dst = v
	}
	return q, nil
}
