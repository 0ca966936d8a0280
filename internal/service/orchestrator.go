package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/logger"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/metrics"
	"github.com/google/uuid"
)

// Orchestrator runs one swap at a time through
// quote -> sign trade -> sign approval -> submit -> monitor.
type Orchestrator struct {
	validator  *RequestValidator
	quotes     *QuoteClient
	signatures *SignatureCollector
	submitter  *SubmissionClient
	poller     *StatusPoller

	reporter Reporter
	balances BalanceReconciler
	network  ChainReader
	now      func() time.Time
	newID    func() string

	busy    atomic.Bool
	mu      sync.RWMutex
	current *model.SwapRecord
}

type OrchestratorOption func(*Orchestrator)

func WithReporter(r Reporter) OrchestratorOption {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithBalanceReconciler enables before/after balance snapshots. Reconcile
// runs once, only when the relayer reports success.
func WithBalanceReconciler(b BalanceReconciler) OrchestratorOption {
	return func(o *Orchestrator) { o.balances = b }
}

// WithNetworkCheck makes every swap confirm that the chain's RPC reports the
// requested chain id before quoting.
func WithNetworkCheck(r ChainReader) OrchestratorOption {
	return func(o *Orchestrator) { o.network = r }
}

func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

func WithIDGenerator(fn func() string) OrchestratorOption {
	return func(o *Orchestrator) { o.newID = fn }
}

func NewOrchestrator(v *RequestValidator, quotes *QuoteClient, signatures *SignatureCollector, submitter *SubmissionClient, poller *StatusPoller, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		validator:  v,
		quotes:     quotes,
		signatures: signatures,
		submitter:  submitter,
		poller:     poller,
		reporter:   LogReporter{},
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// swapRun is the state of one execution. It is owned by the goroutine that
// runs the swap; readers only see copies published through publish.
type swapRun struct {
	rec         model.SwapRecord
	quote       *model.Quote
	before      *BalanceSnapshot
	phaseStart  time.Time
	approvalSig *model.SplitSignature
}

// Busy reports whether a swap is in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Current returns the last published record, if any swap has run.
func (o *Orchestrator) Current() (model.SwapRecord, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.current == nil {
		return model.SwapRecord{}, false
	}
	return *o.current, true
}

// Execute runs a swap to a terminal state and returns its final record. A
// call made while another swap is in flight fails with ORCHESTRATOR_BUSY.
func (o *Orchestrator) Execute(ctx context.Context, req model.SwapRequest) (model.SwapRecord, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return model.SwapRecord{}, busyError()
	}
	defer o.busy.Store(false)

	if err := o.validator.Validate(req); err != nil {
		return model.SwapRecord{}, err
	}
	run := o.newRun(req)
	o.publish(ctx, run)
	return o.execute(ctx, run)
}

// Start validates synchronously and runs the swap in the background. The
// returned record is the initial snapshot. The swap is detached from ctx
// cancellation.
func (o *Orchestrator) Start(ctx context.Context, req model.SwapRequest) (model.SwapRecord, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return model.SwapRecord{}, busyError()
	}
	if err := o.validator.Validate(req); err != nil {
		o.busy.Store(false)
		return model.SwapRecord{}, err
	}

	run := o.newRun(req)
	o.publish(ctx, run)
	initial := run.rec

	detached := context.WithoutCancel(ctx)
	go func() {
		defer o.busy.Store(false)
		_, _ = o.execute(detached, run)
	}()
	return initial, nil
}

func (o *Orchestrator) newRun(req model.SwapRequest) *swapRun {
	now := o.now()
	return &swapRun{
		rec: model.SwapRecord{
			ID:        o.newID(),
			Request:   req,
			Phase:     model.PhaseValidating,
			CreatedAt: now,
			UpdatedAt: now,
		},
		phaseStart: now,
	}
}

func (o *Orchestrator) execute(ctx context.Context, run *swapRun) (model.SwapRecord, error) {
	req := run.rec.Request

	if err := o.checkNetwork(ctx, req.ChainID); err != nil {
		return o.fail(ctx, run, err)
	}
	if o.balances != nil {
		before, err := o.balances.Snapshot(ctx, req)
		if err != nil {
			logger.Warn("balance snapshot before swap failed", "swap_id", run.rec.ID, "error", err)
		}
		run.before = before
	}

	o.enter(ctx, run, model.PhaseQuoting)
	quote, err := o.quotes.GetQuote(ctx, req.ChainID, req.SellToken, req.BuyToken, req.SellAmountAtomic, req.Taker)
	if err != nil {
		return o.fail(ctx, run, err)
	}
	run.quote = quote
	run.rec.SellAmount = quote.SellAmount
	run.rec.BuyAmount = quote.BuyAmount

	o.enter(ctx, run, model.PhaseSigningTrade)
	tradeSig, err := o.signatures.CollectAndSplit(ctx, quote.Trade.EIP712, req.Taker)
	if err != nil {
		return o.fail(ctx, run, err)
	}

	if quote.NeedsApproval() {
		o.enter(ctx, run, model.PhaseSigningApproval)
		sig, err := o.signatures.CollectAndSplit(ctx, quote.Approval.EIP712, req.Taker)
		if err != nil {
			return o.fail(ctx, run, err)
		}
		run.approvalSig = &sig
	}

	// Last point where the caller can still abort without a trade in flight.
	if err := ctx.Err(); err != nil {
		return o.fail(ctx, run, apperrors.New(apperrors.ErrCancelled, "swap cancelled before submission", err))
	}

	o.enter(ctx, run, model.PhaseSubmitting)
	res, err := o.submitter.Submit(ctx, req.ChainID, quote, tradeSig, run.approvalSig)
	if err != nil {
		return o.fail(ctx, run, err)
	}
	run.rec.TradeHash = res.Hash
	if ch, ok := o.validator.Catalog().ChainByID(req.ChainID); ok {
		run.rec.ExplorerURL = ch.TxURL(res.Hash)
	}

	// The signed trade is now with the relayer; its outcome is observed even
	// if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	run.rec.Status = model.StatusPending
	o.enter(ctx, run, model.PhaseMonitoring)

	result := o.poller.Monitor(ctx, res.Hash, req.ChainID,
		func(ctx context.Context, r PollResult) {
			if r.Status == model.StatusSuccess {
				o.reconcile(ctx, run)
			}
		},
		WithAttemptHook(func(attempt int, status model.SwapStatus, _ error) {
			run.rec.Attempts = attempt
			run.rec.Status = status
			o.publish(ctx, run)
		}),
	)
	run.rec.Status = result.Status
	run.rec.Attempts = result.Attempts

	switch result.Status {
	case model.StatusSuccess:
		return o.complete(ctx, run)
	case model.StatusFailed:
		return o.fail(ctx, run, apperrors.New(apperrors.ErrSwapFailed, "swap failed: "+result.Error, nil))
	case model.StatusTimeout:
		return o.fail(ctx, run, apperrors.New(apperrors.ErrPollingTimeout, result.Error, nil))
	default:
		return o.fail(ctx, run, apperrors.New(apperrors.ErrPollingTransport, result.Error, result.Err))
	}
}

func (o *Orchestrator) checkNetwork(ctx context.Context, chainID int64) error {
	if o.network == nil {
		return nil
	}
	reported, err := o.network.ChainID(ctx, chainID)
	if err != nil {
		logger.Warn("network check skipped", "chain_id", chainID, "error", err)
		return nil
	}
	if !reported.IsInt64() || reported.Int64() != chainID {
		return apperrors.Newf(apperrors.ErrValidation, "network mismatch: rpc reports chain %s, swap targets chain %d", reported.String(), chainID)
	}
	return nil
}

func (o *Orchestrator) reconcile(ctx context.Context, run *swapRun) {
	if o.balances == nil {
		return
	}
	diff, err := o.balances.Reconcile(ctx, run.rec.Request, run.before)
	if err != nil {
		logger.LogError(ctx, err, "balance reconciliation failed", "swap_id", run.rec.ID)
		return
	}
	run.rec.Balances = diff
	if run.before != nil && !diff.GaslessVerified {
		logger.Warn("native balance changed during gasless swap", "swap_id", run.rec.ID, "change", diff.NativeChange)
	}
}

func (o *Orchestrator) enter(ctx context.Context, run *swapRun, phase model.Phase) {
	o.observePhase(run)
	run.rec.Phase = phase
	o.publish(ctx, run)
}

func (o *Orchestrator) observePhase(run *swapRun) {
	now := o.now()
	metrics.PhaseDuration.WithLabelValues(string(run.rec.Phase)).Observe(now.Sub(run.phaseStart).Seconds())
	run.phaseStart = now
}

func (o *Orchestrator) complete(ctx context.Context, run *swapRun) (model.SwapRecord, error) {
	o.observePhase(run)
	run.rec.Phase = model.PhaseCompleted
	run.rec.Outcome = model.OutcomeCompleted
	metrics.SwapsTotal.WithLabelValues(string(model.StatusSuccess)).Inc()
	o.publish(ctx, run)
	return run.rec, nil
}

func (o *Orchestrator) fail(ctx context.Context, run *swapRun, err error) (model.SwapRecord, error) {
	appErr := apperrors.Wrap(err)
	failedIn := run.rec.Phase

	o.observePhase(run)
	run.rec.Phase = model.PhaseFailed
	run.rec.Outcome = model.OutcomeFailed
	run.rec.ErrorCode = string(appErr.Type)
	run.rec.Error = appErr.Message

	label := string(run.rec.Status)
	if run.rec.TradeHash == "" {
		label = "aborted"
	}
	metrics.SwapsTotal.WithLabelValues(label).Inc()
	logger.Debug("swap aborted", "swap_id", run.rec.ID, "phase", failedIn, "error", appErr.Error())

	o.publish(ctx, run)
	return run.rec, appErr
}

func (o *Orchestrator) publish(ctx context.Context, run *swapRun) {
	run.rec.UpdatedAt = o.now()
	snapshot := run.rec
	if snapshot.Balances != nil {
		b := *snapshot.Balances
		snapshot.Balances = &b
	}

	o.mu.Lock()
	o.current = &snapshot
	o.mu.Unlock()

	if o.reporter != nil {
		o.reporter.Report(ctx, snapshot)
	}
}

func busyError() *apperrors.AppError {
	return apperrors.New(apperrors.ErrBusy, "a swap is already in progress", nil)
}
