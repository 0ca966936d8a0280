package service

import (
	"context"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/logger"
)

// Reporter receives a read-only copy of the swap record after every phase
// transition.
type Reporter interface {
	Report(ctx context.Context, rec model.SwapRecord)
}

type ReporterFunc func(ctx context.Context, rec model.SwapRecord)

func (f ReporterFunc) Report(ctx context.Context, rec model.SwapRecord) { f(ctx, rec) }

// MultiReporter fans a record out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(ctx context.Context, rec model.SwapRecord) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, rec)
		}
	}
}

type LogReporter struct{}

func (LogReporter) Report(ctx context.Context, rec model.SwapRecord) {
	args := []any{
		"swap_id", rec.ID,
		"chain_id", rec.Request.ChainID,
		"phase", rec.Phase,
	}
	if rec.TradeHash != "" {
		args = append(args, "trade_hash", rec.TradeHash)
	}
	if rec.Status != "" {
		args = append(args, "status", rec.Status)
	}
	switch {
	case rec.Outcome == model.OutcomeFailed:
		logger.Get().WarnContext(ctx, "swap failed", append(args, "error_code", rec.ErrorCode, "error", rec.Error)...)
	case rec.Outcome == model.OutcomeCompleted:
		logger.Get().InfoContext(ctx, "swap completed", append(args, "explorer", rec.ExplorerURL)...)
	default:
		logger.Get().InfoContext(ctx, "swap phase", args...)
	}
}

// StoreReporter persists every record it sees. Store failures are logged and
// never interrupt the swap.
type StoreReporter struct {
	store SwapStore
}

func NewStoreReporter(store SwapStore) *StoreReporter {
	return &StoreReporter{store: store}
}

func (r *StoreReporter) Report(ctx context.Context, rec model.SwapRecord) {
	if err := r.store.Save(ctx, &rec); err != nil {
		logger.LogError(ctx, err, "failed to persist swap record", "swap_id", rec.ID)
	}
}
