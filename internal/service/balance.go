package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const notAvailable = "N/A"

// gasTolerance is the largest native balance change still counted as gasless.
var gasTolerance = decimal.New(1, -8)

// BalanceSnapshot holds the taker's balances at one point in time.
type BalanceSnapshot struct {
	Native *big.Int
	Token  *big.Int
}

// BalanceReconciler compares balances taken before and after a swap.
type BalanceReconciler interface {
	Snapshot(ctx context.Context, req model.SwapRequest) (*BalanceSnapshot, error)
	Reconcile(ctx context.Context, req model.SwapRequest, before *BalanceSnapshot) (*model.BalanceDiff, error)
}

// ChainBalanceReconciler reads native and sell-token balances over RPC.
type ChainBalanceReconciler struct {
	reader  ChainReader
	catalog *catalog.Catalog
}

func NewChainBalanceReconciler(reader ChainReader, cat *catalog.Catalog) *ChainBalanceReconciler {
	return &ChainBalanceReconciler{reader: reader, catalog: cat}
}

func (r *ChainBalanceReconciler) Snapshot(ctx context.Context, req model.SwapRequest) (*BalanceSnapshot, error) {
	owner := common.HexToAddress(req.Taker)
	native, err := r.reader.NativeBalance(ctx, req.ChainID, owner)
	if err != nil {
		return nil, fmt.Errorf("native balance: %w", err)
	}
	token, err := r.reader.TokenBalance(ctx, req.ChainID, common.HexToAddress(req.SellToken), owner)
	if err != nil {
		return nil, fmt.Errorf("token balance: %w", err)
	}
	return &BalanceSnapshot{Native: native, Token: token}, nil
}

// Reconcile snapshots again and diffs against before. A nil before yields
// N/A for every "before" and "change" value.
func (r *ChainBalanceReconciler) Reconcile(ctx context.Context, req model.SwapRequest, before *BalanceSnapshot) (*model.BalanceDiff, error) {
	after, err := r.Snapshot(ctx, req)
	if err != nil {
		return nil, err
	}
	return r.Diff(req, before, after), nil
}

// Diff renders two snapshots in human units.
func (r *ChainBalanceReconciler) Diff(req model.SwapRequest, before, after *BalanceSnapshot) *model.BalanceDiff {
	nativeSymbol, nativeDecimals := "ETH", int32(18)
	if ch, ok := r.catalog.ChainByID(req.ChainID); ok {
		nativeSymbol, nativeDecimals = ch.Native.Symbol, ch.Native.Decimals
	}
	tokenSymbol, tokenDecimals := req.SellToken, int32(18)
	if t, ok := r.catalog.FindByAddress(req.SellToken); ok {
		tokenSymbol, tokenDecimals = t.Symbol, t.Decimals
	}

	nativeAfter := catalog.FromBig(after.Native, nativeDecimals)
	tokenAfter := catalog.FromBig(after.Token, tokenDecimals)
	diff := &model.BalanceDiff{
		NativeSymbol: nativeSymbol,
		NativeBefore: notAvailable,
		NativeAfter:  nativeAfter.String(),
		NativeChange: notAvailable,
		TokenSymbol:  tokenSymbol,
		TokenBefore:  notAvailable,
		TokenAfter:   tokenAfter.String(),
		TokenChange:  notAvailable,
	}
	if before == nil {
		return diff
	}

	nativeBefore := catalog.FromBig(before.Native, nativeDecimals)
	tokenBefore := catalog.FromBig(before.Token, tokenDecimals)
	nativeChange := nativeAfter.Sub(nativeBefore)

	diff.NativeBefore = nativeBefore.String()
	diff.NativeChange = nativeChange.String()
	diff.TokenBefore = tokenBefore.String()
	diff.TokenChange = tokenAfter.Sub(tokenBefore).String()
	diff.GaslessVerified = nativeChange.Abs().LessThan(gasTolerance)
	return diff
}
