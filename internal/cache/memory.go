package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"stockBoard/internal/logx"
)

type memEntry struct {
	Entry
	expiresAt time.Time
}

// MemoryStore 进程内存储，过期条目读时视为未命中，由 Sweep 定期清理。
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memEntry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memEntry), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || !s.now().Before(e.expiresAt) {
		return Entry{}, false, nil
	}
	v := make([]byte, len(e.Value))
	copy(v, e.Value)
	return Entry{Value: v, FetchedAt: e.FetchedAt}, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, e Entry, ttl time.Duration) error {
	v := make([]byte, len(e.Value))
	copy(v, e.Value)
	s.mu.Lock()
	s.items[key] = memEntry{Entry: Entry{Value: v, FetchedAt: e.FetchedAt}, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Len 条目数（含未清理的过期条目）。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep 删除已过期或回源时间早于 maxAge 的条目，返回删除数。maxAge<=0 只按过期清理。
func (s *MemoryStore) Sweep(maxAge time.Duration) int {
	now := s.now()
	n := 0
	s.mu.Lock()
	for k, e := range s.items {
		if !now.Before(e.expiresAt) || (maxAge > 0 && now.Sub(e.FetchedAt) >= maxAge) {
			delete(s.items, k)
			n++
		}
	}
	s.mu.Unlock()
	return n
}

// StartSweeper 按 cron 表达式（支持 "@every 5m"）定期 Sweep，返回已启动的调度器，调用方负责 Stop。
func StartSweeper(s *MemoryStore, spec string, maxAge time.Duration) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if n := s.Sweep(maxAge); n > 0 {
			logx.L().Info("cache: swept", zap.Int("removed", n), zap.Int("left", s.Len()))
		}
	}); err != nil {
		return nil, fmt.Errorf("register sweep %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
