package service

import (
	"context"
	"errors"
	"testing"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestPoller_SuccessOnLastAttempt(t *testing.T) {
	clock := newVirtualClock()
	start := clock.Now()
	api := statuses(append(repeat("pending", 9), "success")...)
	p := NewStatusPoller(api, clock, testInterval, 10)

	var terminal []PollResult
	res := p.Monitor(context.Background(), testTradeTx, 8453, func(_ context.Context, r PollResult) {
		terminal = append(terminal, r)
	})

	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, 10, res.Attempts)
	assert.Equal(t, 10, api.Calls())
	require.Len(t, terminal, 1)
	assert.Equal(t, res, terminal[0])
	assert.Equal(t, 10*testInterval, clock.Now().Sub(start))
}

func TestPoller_TimeoutAfterBudget(t *testing.T) {
	clock := newVirtualClock()
	start := clock.Now()
	api := statuses(repeat("pending", 10)...)
	p := NewStatusPoller(api, clock, testInterval, 10)

	res := p.Monitor(context.Background(), testTradeTx, 8453, nil)

	assert.Equal(t, model.StatusTimeout, res.Status)
	assert.Equal(t, 10, res.Attempts)
	assert.Equal(t, 10, api.Calls())
	assert.Contains(t, res.Error, "block explorer")
	assert.LessOrEqual(t, clock.Now().Sub(start), 10*testInterval)
}

func TestPoller_UnknownStatusesStayPending(t *testing.T) {
	api := statuses("submitted", "", "pending", "weird", "success")
	p := NewStatusPoller(api, newVirtualClock(), testInterval, 10)

	var seen []model.SwapStatus
	res := p.Monitor(context.Background(), testTradeTx, 8453, nil, WithAttemptHook(func(_ int, s model.SwapStatus, _ error) {
		seen = append(seen, s)
	}))

	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, []model.SwapStatus{
		model.StatusPending, model.StatusPending, model.StatusPending, model.StatusPending, model.StatusSuccess,
	}, seen)
}

func TestPoller_ConfirmedCountsAsSuccess(t *testing.T) {
	api := statuses("pending", "confirmed", "pending")
	var terminal int
	res := NewStatusPoller(api, newVirtualClock(), testInterval, 10).Monitor(context.Background(), testTradeTx, 8453,
		func(context.Context, PollResult) { terminal++ })

	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, api.Calls())
	assert.Equal(t, 1, terminal)
}

func TestPoller_FailedCarriesServiceError(t *testing.T) {
	api := &fakeStatusAPI{steps: []statusStep{{status: "pending"}, {status: "failed", errMsg: "slippage exceeded"}}}
	res := NewStatusPoller(api, newVirtualClock(), testInterval, 10).Monitor(context.Background(), testTradeTx, 8453, nil)

	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, "slippage exceeded", res.Error)
}

func TestPoller_FailedWithoutMessage(t *testing.T) {
	res := NewStatusPoller(statuses("failed"), newVirtualClock(), testInterval, 10).
		Monitor(context.Background(), testTradeTx, 8453, nil)

	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Equal(t, "unknown error", res.Error)
}

func TestPoller_TransportErrorsExhaustBudget(t *testing.T) {
	boom := errors.New("connection reset")
	api := &fakeStatusAPI{steps: []statusStep{{err: boom}}}
	res := NewStatusPoller(api, newVirtualClock(), testInterval, 4).Monitor(context.Background(), testTradeTx, 8453, nil)

	assert.Equal(t, model.StatusPollingError, res.Status)
	assert.Equal(t, 4, res.Attempts)
	assert.Equal(t, 4, api.Calls())
	assert.ErrorIs(t, res.Err, boom)
	assert.Contains(t, res.Error, "connection reset")
}

func TestPoller_TransportErrorThenRecovery(t *testing.T) {
	api := &fakeStatusAPI{steps: []statusStep{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{status: "success"},
	}}
	res := NewStatusPoller(api, newVirtualClock(), testInterval, 10).Monitor(context.Background(), testTradeTx, 8453, nil)

	assert.Equal(t, model.StatusSuccess, res.Status)
	assert.Equal(t, 3, res.Attempts)
	assert.NoError(t, res.Err)
}

func TestPoller_PendingAfterErrorEndsInTimeout(t *testing.T) {
	api := &fakeStatusAPI{steps: []statusStep{{err: errors.New("timeout")}, {status: "pending"}}}
	res := NewStatusPoller(api, newVirtualClock(), testInterval, 3).Monitor(context.Background(), testTradeTx, 8453, nil)

	assert.Equal(t, model.StatusTimeout, res.Status)
}

func TestPoller_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewStatusPoller(statuses("pending"), blockingScheduler{}, testInterval, 10)

	called := 0
	res := p.Monitor(ctx, testTradeTx, 8453, func(context.Context, PollResult) { called++ })

	assert.Equal(t, model.StatusPollingError, res.Status)
	assert.Equal(t, 0, res.Attempts)
	assert.Equal(t, 1, called)
}

func TestPoller_Defaults(t *testing.T) {
	p := NewStatusPoller(statuses("pending"), nil, 0, 0)
	assert.Equal(t, DefaultPollInterval, p.Interval())
	assert.Equal(t, DefaultPollMaxAttempts, p.MaxAttempts())
}
