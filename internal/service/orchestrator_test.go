package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/zerox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	quotes     *fakeQuoteAPI
	signer     *fakeSigner
	submit     *fakeSubmitAPI
	status     *fakeStatusAPI
	reconciler *fakeReconciler
	reporter   *recordingReporter
	validator  *RequestValidator
	orch       *Orchestrator
}

func newHarness(approval bool, statusSeq ...string) *harness {
	h := &harness{
		quotes:     &fakeQuoteAPI{resp: quoteWith(approval)},
		signer:     &fakeSigner{},
		submit:     &fakeSubmitAPI{resp: &zerox.SubmitResponse{TradeHash: testTradeTx}},
		status:     statuses(statusSeq...),
		reconciler: &fakeReconciler{},
		reporter:   &recordingReporter{},
		validator:  NewRequestValidator(catalog.Default()),
	}
	clock := newVirtualClock()
	h.orch = NewOrchestrator(
		h.validator,
		NewQuoteClient(h.quotes),
		NewSignatureCollector(h.signer, false),
		NewSubmissionClient(h.submit),
		NewStatusPoller(h.status, clock, testInterval, 10),
		WithReporter(h.reporter),
		WithBalanceReconciler(h.reconciler),
		WithClock(clock.Now),
	)
	return h
}

func (h *harness) request(t *testing.T) model.SwapRequest {
	t.Helper()
	req, err := h.validator.BuildRequest(SwapIntent{
		ChainID:   8453,
		SellToken: "USDC",
		BuyToken:  "DAI",
		Amount:    "5.00",
	}, testTaker)
	require.NoError(t, err)
	return req
}

func TestOrchestrator_CompletesWithApproval(t *testing.T) {
	h := newHarness(true, "pending", "pending", "success")
	req := h.request(t)
	require.Equal(t, "5000000", req.SellAmountAtomic)

	rec, err := h.orch.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeCompleted, rec.Outcome)
	assert.Equal(t, model.PhaseCompleted, rec.Phase)
	assert.Equal(t, model.StatusSuccess, rec.Status)
	assert.Equal(t, testTradeTx, rec.TradeHash)
	assert.Equal(t, "https://basescan.org/tx/"+testTradeTx, rec.ExplorerURL)
	assert.Equal(t, 3, rec.Attempts)
	assert.Equal(t, "4990000000000000000", rec.BuyAmount)

	assert.Equal(t, []string{tradeDoc, approvalDoc}, h.signer.Docs())
	assert.Equal(t, 1, h.submit.calls)
	require.NotNil(t, h.submit.last.Approval)
	assert.Equal(t, uint8(27), h.submit.last.Trade.Signature.V)
	assert.Equal(t, model.SignatureTypeEIP712, h.submit.last.Approval.Signature.SignatureType)
	assert.Equal(t, 3, h.status.Calls())

	assert.Equal(t, 1, h.reconciler.snapshots)
	assert.Equal(t, 1, h.reconciler.reconciles)
	require.NotNil(t, rec.Balances)
	assert.True(t, rec.Balances.GaslessVerified)

	assert.Equal(t, []model.Phase{
		model.PhaseValidating,
		model.PhaseQuoting,
		model.PhaseSigningTrade,
		model.PhaseSigningApproval,
		model.PhaseSubmitting,
		model.PhaseMonitoring,
		model.PhaseCompleted,
	}, h.reporter.Phases())
	assert.False(t, h.orch.Busy())

	current, ok := h.orch.Current()
	require.True(t, ok)
	assert.Equal(t, rec.ID, current.ID)
	assert.True(t, current.Terminal())
}

func TestOrchestrator_SignsOnceWithoutApproval(t *testing.T) {
	h := newHarness(false, "success")

	rec, err := h.orch.Execute(context.Background(), h.request(t))
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeCompleted, rec.Outcome)
	assert.Equal(t, []string{tradeDoc}, h.signer.Docs())
	assert.Nil(t, h.submit.last.Approval)
	assert.NotContains(t, h.reporter.Phases(), model.PhaseSigningApproval)
}

func TestOrchestrator_TradeSignatureRejected(t *testing.T) {
	h := newHarness(true, "success")
	h.signer.rejectOn = 1

	rec, err := h.orch.Execute(context.Background(), h.request(t))
	require.Error(t, err)

	assert.True(t, apperrors.HasType(err, apperrors.ErrSignatureReject))
	assert.ErrorIs(t, err, errUserRejected)
	assert.Equal(t, model.OutcomeFailed, rec.Outcome)
	assert.Equal(t, string(apperrors.ErrSignatureReject), rec.ErrorCode)
	assert.Len(t, h.signer.Docs(), 1)
	assert.Equal(t, 0, h.submit.calls)
	assert.Equal(t, 0, h.status.Calls())
	assert.Equal(t, 0, h.reconciler.reconciles)
	assert.False(t, h.orch.Busy())
}

func TestOrchestrator_ApprovalSignatureRejected(t *testing.T) {
	h := newHarness(true, "success")
	h.signer.rejectOn = 2

	_, err := h.orch.Execute(context.Background(), h.request(t))

	assert.True(t, apperrors.HasType(err, apperrors.ErrSignatureReject))
	assert.Equal(t, []string{tradeDoc, approvalDoc}, h.signer.Docs())
	assert.Equal(t, 0, h.submit.calls)
}

func TestOrchestrator_QuoteWithoutTradeNeverSigns(t *testing.T) {
	h := newHarness(false, "success")
	h.quotes.resp = &zerox.QuoteResponse{
		LiquidityAvailable: false,
		ValidationErrors:   []zerox.ValidationError{{Field: "sellAmount", Description: "sellAmount too small"}},
	}

	rec, err := h.orch.Execute(context.Background(), h.request(t))

	assert.ErrorIs(t, err, apperrors.QuoteInvalid)
	assert.Equal(t, "sellAmount too small", rec.Error)
	assert.Empty(t, h.signer.Docs())
	assert.Equal(t, 0, h.submit.calls)
}

func TestOrchestrator_SubmitWithoutHashFails(t *testing.T) {
	h := newHarness(false, "success")
	h.submit.resp = &zerox.SubmitResponse{}

	rec, err := h.orch.Execute(context.Background(), h.request(t))

	assert.True(t, apperrors.HasType(err, apperrors.ErrSubmission))
	assert.Empty(t, rec.TradeHash)
	assert.Equal(t, 0, h.status.Calls())
}

func TestOrchestrator_RelayerFailure(t *testing.T) {
	h := newHarness(false, "pending", "failed")

	rec, err := h.orch.Execute(context.Background(), h.request(t))

	assert.True(t, apperrors.HasType(err, apperrors.ErrSwapFailed))
	assert.Equal(t, model.StatusFailed, rec.Status)
	assert.Contains(t, rec.Error, "unknown error")
	assert.Equal(t, 0, h.reconciler.reconciles)
}

func TestOrchestrator_Timeout(t *testing.T) {
	h := newHarness(false, "pending")

	rec, err := h.orch.Execute(context.Background(), h.request(t))

	assert.True(t, apperrors.HasType(err, apperrors.ErrPollingTimeout))
	assert.Equal(t, model.StatusTimeout, rec.Status)
	assert.Equal(t, 10, rec.Attempts)
	assert.NotEmpty(t, rec.ExplorerURL)
}

func TestOrchestrator_PollingTransportError(t *testing.T) {
	h := newHarness(false)
	h.status.steps = []statusStep{{err: errors.New("dial tcp: refused")}}

	rec, err := h.orch.Execute(context.Background(), h.request(t))

	assert.True(t, apperrors.HasType(err, apperrors.ErrPollingTransport))
	assert.Equal(t, model.StatusPollingError, rec.Status)
}

func TestOrchestrator_ValidationHasNoSideEffects(t *testing.T) {
	h := newHarness(false, "success")
	req := h.request(t)
	req.SellAmountAtomic = "0"

	_, err := h.orch.Execute(context.Background(), req)

	assert.True(t, apperrors.HasType(err, apperrors.ErrValidation))
	assert.Equal(t, 0, h.quotes.calls)
	assert.Equal(t, 0, h.reconciler.snapshots)
	assert.Empty(t, h.reporter.records)
	assert.False(t, h.orch.Busy())
}

func TestOrchestrator_RejectsConcurrentExecute(t *testing.T) {
	h := newHarness(false, "success")
	h.signer.entered = make(chan struct{}, 1)
	h.signer.release = make(chan struct{})
	req := h.request(t)

	done := make(chan error, 1)
	go func() {
		_, err := h.orch.Execute(context.Background(), req)
		done <- err
	}()

	<-h.signer.entered
	assert.True(t, h.orch.Busy())
	_, err := h.orch.Execute(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.Busy)
	_, err = h.orch.Start(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.Busy)

	close(h.signer.release)
	require.NoError(t, <-done)
	assert.False(t, h.orch.Busy())

	h.signer.entered = nil
	rec, err := h.orch.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCompleted, rec.Outcome)
	assert.Equal(t, 2, h.quotes.calls)
}

func TestOrchestrator_StartRunsInBackground(t *testing.T) {
	h := newHarness(true, "pending", "success")

	ctx, cancel := context.WithCancel(context.Background())
	initial, err := h.orch.Start(ctx, h.request(t))
	require.NoError(t, err)
	cancel()

	assert.Equal(t, model.PhaseValidating, initial.Phase)
	assert.NotEmpty(t, initial.ID)

	require.Eventually(t, func() bool {
		cur, ok := h.orch.Current()
		return ok && cur.Terminal() && !h.orch.Busy()
	}, 2*time.Second, 5*time.Millisecond)

	cur, _ := h.orch.Current()
	assert.Equal(t, initial.ID, cur.ID)
	assert.Equal(t, model.OutcomeCompleted, cur.Outcome)
}

func TestOrchestrator_CancelledBeforeSubmitNeverSubmits(t *testing.T) {
	h := newHarness(true, "success")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := h.orch.Execute(ctx, h.request(t))

	assert.True(t, apperrors.HasType(err, apperrors.ErrCancelled))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.PhaseFailed, rec.Phase)
	assert.Equal(t, string(apperrors.ErrCancelled), rec.ErrorCode)
	assert.Empty(t, rec.TradeHash)
	assert.Equal(t, 0, h.submit.calls)
	assert.Equal(t, 0, h.status.Calls())
	assert.Equal(t, 0, h.reconciler.reconciles)
	assert.False(t, h.orch.Busy())
}

func TestOrchestrator_StartReleasesGuardOnValidationError(t *testing.T) {
	h := newHarness(false, "success")
	req := h.request(t)
	req.ChainID = 999

	_, err := h.orch.Start(context.Background(), req)
	assert.True(t, apperrors.HasType(err, apperrors.ErrValidation))
	assert.False(t, h.orch.Busy())
}

func TestOrchestrator_NetworkMismatch(t *testing.T) {
	h := newHarness(false, "success")
	h.orch.network = &fakeChainReader{chainID: 1}

	_, err := h.orch.Execute(context.Background(), h.request(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "network mismatch")
	assert.Equal(t, 0, h.quotes.calls)
}

func TestOrchestrator_BalanceSnapshotFailureIsNotFatal(t *testing.T) {
	h := newHarness(false, "success")
	h.reconciler.snapErr = errors.New("rpc down")

	rec, err := h.orch.Execute(context.Background(), h.request(t))
	require.NoError(t, err)

	assert.Equal(t, 1, h.reconciler.reconciles)
	require.NotNil(t, rec.Balances)
	assert.False(t, rec.Balances.GaslessVerified)
}
