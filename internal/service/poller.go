package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/logger"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/metrics"
	"github.com/GoPolymarket/gaslessgate/internal/zerox"
)

const (
	DefaultPollInterval    = 5 * time.Second
	DefaultPollMaxAttempts = 10

	unknownFailure = "unknown error"
)

type StatusAPI interface {
	Status(ctx context.Context, hash string, chainID int64) (*zerox.StatusResponse, error)
}

// PollResult is the terminal state reached by one Monitor call.
type PollResult struct {
	Status   model.SwapStatus
	Attempts int
	// Error is the human-readable cause for failed, timeout and pollingError.
	Error string
	// Err is the last transport error when Status is pollingError.
	Err error
}

// TerminalFunc runs exactly once when monitoring reaches a terminal state,
// before Monitor returns.
type TerminalFunc func(ctx context.Context, result PollResult)

// AttemptFunc observes every status check.
type AttemptFunc func(attempt int, status model.SwapStatus, err error)

type MonitorOption func(*monitorOptions)

type monitorOptions struct {
	onAttempt AttemptFunc
}

func WithAttemptHook(fn AttemptFunc) MonitorOption {
	return func(o *monitorOptions) {
		o.onAttempt = fn
	}
}

// StatusPoller checks a submitted trade on a fixed cadence until the relayer
// reports a terminal status or the attempt budget runs out.
type StatusPoller struct {
	api         StatusAPI
	scheduler   Scheduler
	interval    time.Duration
	maxAttempts int
}

func NewStatusPoller(api StatusAPI, scheduler Scheduler, interval time.Duration, maxAttempts int) *StatusPoller {
	if scheduler == nil {
		scheduler = RealScheduler()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollMaxAttempts
	}
	return &StatusPoller{
		api:         api,
		scheduler:   scheduler,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

func (p *StatusPoller) Interval() time.Duration { return p.interval }
func (p *StatusPoller) MaxAttempts() int        { return p.maxAttempts }

// Monitor waits one interval before every status check.
func (p *StatusPoller) Monitor(ctx context.Context, hash string, chainID int64, onTerminal TerminalFunc, opts ...MonitorOption) PollResult {
	var o monitorOptions
	for _, opt := range opts {
		opt(&o)
	}

	log := logger.With("trade_hash", hash, "chain_id", chainID)
	result := p.run(ctx, hash, chainID, o, log)

	switch result.Status {
	case model.StatusSuccess:
		log.Info("trade confirmed", "attempts", result.Attempts)
	case model.StatusFailed:
		log.Warn("trade failed", "attempts", result.Attempts, "reason", result.Error)
	default:
		log.Warn("monitoring stopped", "status", result.Status, "attempts", result.Attempts, "reason", result.Error)
	}

	if onTerminal != nil {
		onTerminal(ctx, result)
	}
	return result
}

func (p *StatusPoller) run(ctx context.Context, hash string, chainID int64, o monitorOptions, log *slog.Logger) PollResult {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return PollResult{
				Status:   model.StatusPollingError,
				Attempts: attempt - 1,
				Error:    "monitoring cancelled: " + ctx.Err().Error(),
				Err:      ctx.Err(),
			}
		case <-p.scheduler.After(p.interval):
		}

		resp, err := p.api.Status(ctx, hash, chainID)
		if err != nil {
			lastErr = err
			metrics.PollAttempts.WithLabelValues("error").Inc()
			log.Debug("status check failed", "attempt", attempt, "error", err)
			if o.onAttempt != nil {
				o.onAttempt(attempt, model.StatusPending, err)
			}
			continue
		}
		lastErr = nil

		status := mapStatus(resp.Status)
		metrics.PollAttempts.WithLabelValues(string(status)).Inc()
		log.Debug("status checked", "attempt", attempt, "status", resp.Status)
		if o.onAttempt != nil {
			o.onAttempt(attempt, status, nil)
		}

		switch status {
		case model.StatusSuccess:
			return PollResult{Status: model.StatusSuccess, Attempts: attempt}
		case model.StatusFailed:
			msg := resp.Error
			if msg == "" {
				msg = resp.Reason
			}
			if msg == "" {
				msg = unknownFailure
			}
			return PollResult{Status: model.StatusFailed, Attempts: attempt, Error: msg}
		}
	}

	if lastErr != nil {
		return PollResult{
			Status:   model.StatusPollingError,
			Attempts: p.maxAttempts,
			Error:    "status checks failed: " + upstreamMessage(lastErr),
			Err:      lastErr,
		}
	}
	return PollResult{
		Status:   model.StatusTimeout,
		Attempts: p.maxAttempts,
		Error:    "swap not confirmed after maximum attempts; check the block explorer",
	}
}

func mapStatus(s string) model.SwapStatus {
	switch s {
	case "success", "confirmed":
		return model.StatusSuccess
	case "failed":
		return model.StatusFailed
	default:
		return model.StatusPending
	}
}
