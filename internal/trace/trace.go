// Package trace 在 context 中传递 trace ID，日志每条带 trace 字段便于按一次查询排查。
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"go.uber.org/zap"

	"stockBoard/internal/logx"
)

type ctxKey int

const traceIDKey ctxKey = 0

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

func NewTraceID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "0"
	}
	return hex.EncodeToString(b)
}

// Ensure 没有 trace ID 时生成一个。
func Ensure(ctx context.Context) context.Context {
	if TraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, NewTraceID())
}

// Logger 返回带 trace 字段的 logger。
func Logger(ctx context.Context) *zap.Logger {
	id := TraceID(ctx)
	if id == "" {
		id = "-"
	}
	return logx.L().With(zap.String("trace", id))
}

// Log 按格式打 info 日志，形如 "api: req GET url"。
func Log(ctx context.Context, format string, args ...interface{}) {
	Logger(ctx).WithOptions(zap.AddCallerSkip(1)).Sugar().Infof(format, args...)
}
