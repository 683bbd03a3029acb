package quote

import (
	"context"

	"stockBoard/internal/model"
)

// SnapshotSource 提供全市场实时快照，api.Client 实现。
//
//go:generate mockgen -package=quote_test -destination=mock_source_test.go -source=source.go
type SnapshotSource interface {
	Snapshot(ctx context.Context) (model.Frame, error)
}
