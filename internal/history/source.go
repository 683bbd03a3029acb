package history

import (
	"context"

	"stockBoard/internal/model"
)

// Source 按代码、周期、8 位起止日期与复权方式返回原始 K 线表，api.Client 实现。
//
//go:generate mockgen -package=history_test -destination=mock_source_test.go -source=source.go
type Source interface {
	HistoryFrame(ctx context.Context, code string, period model.Period, start, end string, adjust model.Adjust) (model.Frame, error)
}
