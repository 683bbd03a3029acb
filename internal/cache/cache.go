// Package cache 为行情与 K 线提供显式的 TTL 缓存：同一 key 并发未命中只回源一次，
// 回源失败不写缓存，存储读写失败按未命中处理并记日志。
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"stockBoard/internal/trace"
)

// 缓存类别
const (
	KindQuote   = "quote"
	KindHistory = "history"
)

// Key 由类别与参数组成，渲染为 "kind:p1:p2"。
type Key struct {
	Kind   string
	Params []string
}

// NewKey 便捷构造。
func NewKey(kind string, params ...string) Key {
	return Key{Kind: kind, Params: params}
}

func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Kind
	}
	return k.Kind + ":" + strings.Join(k.Params, ":")
}

// Entry 存储中的一条记录：JSON 编码的值与回源时间。
type Entry struct {
	Value     []byte
	FetchedAt time.Time
}

// Store 缓存后端。Get 未命中返回 ok=false 且 err=nil。
type Store interface {
	Get(ctx context.Context, key string) (e Entry, ok bool, err error)
	Set(ctx context.Context, key string, e Entry, ttl time.Duration) error
}

type Cache struct {
	store Store
	now   func() time.Time
	sf    singleflight.Group
}

// Option 调整 Cache。
type Option func(*Cache)

// WithClock 替换时钟（测试注入）。
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func New(store Store, opts ...Option) *Cache {
	c := &Cache{store: store, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrFetch 命中且 now-fetchedAt < ttl 时直接返回缓存值；否则调用 fetch 一次并写回。
// c 为 nil、store 为 nil 或 ttl<=0 时不缓存，直接回源。
func GetOrFetch[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if c == nil || c.store == nil || ttl <= 0 {
		return fetch(ctx)
	}
	k := key.String()
	if v, ok := lookup[T](ctx, c, k, ttl); ok {
		trace.Log(ctx, "cache: hit key=%s", k)
		return v, nil
	}
	// 回源与发起者的取消解耦，发起者离开时其余等待者仍拿到结果
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(k, func() (any, error) {
		// 排队期间可能已被其他调用写入
		if v, ok := lookup[T](fetchCtx, c, k, ttl); ok {
			return v, nil
		}
		trace.Log(fetchCtx, "cache: miss key=%s", k)
		v, err := fetch(fetchCtx)
		if err != nil {
			return v, err
		}
		c.put(fetchCtx, k, v, ttl)
		return v, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Shared {
		trace.Log(ctx, "cache: shared key=%s", k)
	}
	if res.Err != nil {
		var zero T
		return zero, res.Err
	}
	return res.Val.(T), nil
}

func lookup[T any](ctx context.Context, c *Cache, key string, ttl time.Duration) (T, bool) {
	var zero T
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		trace.Logger(ctx).Warn("cache: get failed", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	if !ok || c.now().Sub(e.FetchedAt) >= ttl {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(e.Value, &v); err != nil {
		trace.Logger(ctx).Warn("cache: decode failed", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	return v, true
}

func (c *Cache) put(ctx context.Context, key string, v any, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		trace.Logger(ctx).Warn("cache: encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, Entry{Value: b, FetchedAt: c.now()}, ttl); err != nil {
		trace.Logger(ctx).Warn("cache: set failed", zap.String("key", key), zap.Error(err))
	}
}
