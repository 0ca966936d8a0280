package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/zerox"
	"github.com/ethereum/go-ethereum/common"
)

const (
	testTaker    = "0x1111111111111111111111111111111111111111"
	tradeDoc     = `{"primaryType":"Trade"}`
	approvalDoc  = `{"primaryType":"Permit"}`
	testTradeTx  = "0xabc123"
	testInterval = 5 * time.Second
)

// virtualClock fires every After immediately and advances its own time.
type virtualClock struct {
	mu    sync.Mutex
	now   time.Time
	waits int
}

func newVirtualClock() *virtualClock {
	return &virtualClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *virtualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.waits++
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type statusStep struct {
	status string
	errMsg string
	err    error
}

type fakeStatusAPI struct {
	mu    sync.Mutex
	steps []statusStep
	calls int
}

func statuses(values ...string) *fakeStatusAPI {
	api := &fakeStatusAPI{}
	for _, v := range values {
		api.steps = append(api.steps, statusStep{status: v})
	}
	return api
}

func (f *fakeStatusAPI) Status(_ context.Context, _ string, _ int64) (*zerox.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step := f.steps[len(f.steps)-1]
	if f.calls < len(f.steps) {
		step = f.steps[f.calls]
	}
	f.calls++
	if step.err != nil {
		return nil, step.err
	}
	return &zerox.StatusResponse{Status: step.status, Error: step.errMsg}, nil
}

func (f *fakeStatusAPI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeQuoteAPI struct {
	resp  *zerox.QuoteResponse
	err   error
	calls int
	last  zerox.PriceRequest
}

func (f *fakeQuoteAPI) Price(_ context.Context, req zerox.PriceRequest) (*zerox.PriceResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &zerox.PriceResponse{LiquidityAvailable: true, SellAmount: req.SellAmount, BuyAmount: f.resp.BuyAmount}, nil
}

func (f *fakeQuoteAPI) Quote(_ context.Context, req zerox.PriceRequest) (*zerox.QuoteResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func quoteWith(approval bool) *zerox.QuoteResponse {
	q := &zerox.QuoteResponse{
		LiquidityAvailable: true,
		SellAmount:         "5000000",
		BuyAmount:          "4990000000000000000",
		Trade:              &zerox.QuoteEnvelope{Type: "settler_metatransaction", EIP712: json.RawMessage(tradeDoc)},
	}
	if approval {
		q.Approval = &zerox.QuoteEnvelope{Type: "permit", EIP712: json.RawMessage(approvalDoc)}
	}
	return q
}

type fakeSubmitAPI struct {
	resp  *zerox.SubmitResponse
	err   error
	calls int
	last  zerox.SubmitRequest
}

func (f *fakeSubmitAPI) Submit(_ context.Context, req zerox.SubmitRequest) (*zerox.SubmitResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

// fakeSigner returns a fixed signature with recovery byte 0 and records the
// documents it was asked to sign.
type fakeSigner struct {
	mu       sync.Mutex
	docs     []string
	rejectOn int
	entered  chan struct{}
	release  chan struct{}
}

var errUserRejected = errors.New("user rejected the request")

func (s *fakeSigner) SignTypedData(ctx context.Context, _ common.Address, typedData json.RawMessage) (string, error) {
	s.mu.Lock()
	s.docs = append(s.docs, string(typedData))
	n := len(s.docs)
	s.mu.Unlock()

	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if s.rejectOn == n {
		return "", errUserRejected
	}
	return "0x" + strings.Repeat("11", 32) + strings.Repeat("22", 32) + "00", nil
}

func (s *fakeSigner) Docs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.docs...)
}

type fakeReconciler struct {
	mu         sync.Mutex
	snapshots  int
	reconciles int
	snapErr    error
}

func (f *fakeReconciler) Snapshot(_ context.Context, _ model.SwapRequest) (*BalanceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return &BalanceSnapshot{Native: big.NewInt(1), Token: big.NewInt(5000000)}, nil
}

func (f *fakeReconciler) Reconcile(_ context.Context, _ model.SwapRequest, before *BalanceSnapshot) (*model.BalanceDiff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconciles++
	return &model.BalanceDiff{NativeChange: "0", TokenChange: "-5", GaslessVerified: before != nil}, nil
}

// fakeChainReader serves successive balance readings from its slices.
type fakeChainReader struct {
	chainID     int64
	err         error
	native      []*big.Int
	token       []*big.Int
	nativeCalls int
	tokenCalls  int
}

func (f *fakeChainReader) ChainID(context.Context, int64) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return big.NewInt(f.chainID), nil
}

func (f *fakeChainReader) NativeBalance(context.Context, int64, common.Address) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	v := f.native[f.nativeCalls]
	f.nativeCalls++
	return v, nil
}

func (f *fakeChainReader) TokenBalance(context.Context, int64, common.Address, common.Address) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	v := f.token[f.tokenCalls]
	f.tokenCalls++
	return v, nil
}

type blockingScheduler struct{}

func (blockingScheduler) After(time.Duration) <-chan time.Time { return make(chan time.Time) }
func (blockingScheduler) Now() time.Time                       { return time.Now() }

type recordingReporter struct {
	mu      sync.Mutex
	records []model.SwapRecord
}

func (r *recordingReporter) Report(_ context.Context, rec model.SwapRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recordingReporter) Phases() []model.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Phase
	for _, rec := range r.records {
		if len(out) == 0 || out[len(out)-1] != rec.Phase {
			out = append(out, rec.Phase)
		}
	}
	return out
}
