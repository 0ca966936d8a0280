package model

import (
	"encoding/json"
	"time"
)

// SignatureTypeEIP712 tags signatures produced over EIP-712 typed data.
const SignatureTypeEIP712 = 2

// SwapRequest is one fully resolved swap: token addresses and the atomic sell
// amount are final. It is not modified once validation passes.
type SwapRequest struct {
	ChainID          int64  `json:"chain_id" validate:"required,gt=0"`
	SellToken        string `json:"sell_token" validate:"required,eth_addr"`
	BuyToken         string `json:"buy_token" validate:"required,eth_addr,nefield=SellToken"`
	SellAmountAtomic string `json:"sell_amount" validate:"required,numeric"`
	Taker            string `json:"taker" validate:"required,eth_addr"`
	Recipient        string `json:"recipient" validate:"omitempty,eth_addr"`
}

// TypedDataEnvelope is a typed-data document as returned by the quote
// service together with its type tag. EIP712 is kept verbatim so it can be
// echoed back in the submission unmodified.
type TypedDataEnvelope struct {
	Type   string          `json:"type"`
	EIP712 json.RawMessage `json:"eip712,omitempty"`
}

// HasTypedData reports whether the envelope carries a non-null document.
func (e *TypedDataEnvelope) HasTypedData() bool {
	if e == nil || len(e.EIP712) == 0 {
		return false
	}
	s := string(e.EIP712)
	return s != "null" && s != "{}"
}

type Quote struct {
	ChainID         int64              `json:"chainId,omitempty"`
	SellToken       string             `json:"sellToken,omitempty"`
	BuyToken        string             `json:"buyToken,omitempty"`
	SellAmount      string             `json:"sellAmount"`
	BuyAmount       string             `json:"buyAmount"`
	MinBuyAmount    string             `json:"minBuyAmount,omitempty"`
	AllowanceTarget string             `json:"allowanceTarget,omitempty"`
	Trade           *TypedDataEnvelope `json:"trade,omitempty"`
	Approval        *TypedDataEnvelope `json:"approval,omitempty"`
	ZID             string             `json:"zid,omitempty"`
}

// NeedsApproval reports whether the quote asks for a separate allowance
// authorization.
func (q *Quote) NeedsApproval() bool {
	return q != nil && q.Approval.HasTypedData()
}

type SplitSignature struct {
	V             uint8  `json:"v"`
	R             string `json:"r"`
	S             string `json:"s"`
	SignatureType int    `json:"signatureType"`
}

type SubmissionResult struct {
	Hash string `json:"hash"`
}

type SwapStatus string

const (
	StatusPending      SwapStatus = "pending"
	StatusSuccess      SwapStatus = "success"
	StatusFailed       SwapStatus = "failed"
	StatusTimeout      SwapStatus = "timeout"
	StatusPollingError SwapStatus = "pollingError"
)

func (s SwapStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusTimeout, StatusPollingError:
		return true
	default:
		return false
	}
}

type Phase string

const (
	PhaseValidating      Phase = "validating"
	PhaseQuoting         Phase = "quoting"
	PhaseSigningTrade    Phase = "signing-trade"
	PhaseSigningApproval Phase = "signing-approval"
	PhaseSubmitting      Phase = "submitting"
	PhaseMonitoring      Phase = "monitoring"
	PhaseCompleted       Phase = "completed"
	PhaseFailed          Phase = "failed"
)

// Outcome is the final verdict of one execution.
type Outcome string

const (
	OutcomeCompleted Outcome = "Completed"
	OutcomeFailed    Outcome = "Failed"
)

// BalanceDiff is the before/after comparison recorded after a successful swap.
type BalanceDiff struct {
	NativeSymbol    string `json:"native_symbol"`
	NativeBefore    string `json:"native_before"`
	NativeAfter     string `json:"native_after"`
	NativeChange    string `json:"native_change"`
	TokenSymbol     string `json:"token_symbol"`
	TokenBefore     string `json:"token_before"`
	TokenAfter      string `json:"token_after"`
	TokenChange     string `json:"token_change"`
	GaslessVerified bool   `json:"gasless_verified"`
}

// SwapRecord is the read-only projection of an execution published after
// every phase transition and persisted by the swap stores.
type SwapRecord struct {
	ID          string       `json:"id"`
	Request     SwapRequest  `json:"request"`
	Phase       Phase        `json:"phase"`
	Status      SwapStatus   `json:"status,omitempty"`
	Outcome     Outcome      `json:"outcome,omitempty"`
	SellAmount  string       `json:"sell_amount,omitempty"`
	BuyAmount   string       `json:"buy_amount,omitempty"`
	TradeHash   string       `json:"trade_hash,omitempty"`
	ExplorerURL string       `json:"explorer_url,omitempty"`
	Attempts    int          `json:"poll_attempts,omitempty"`
	ErrorCode   string       `json:"error_code,omitempty"`
	Error       string       `json:"error,omitempty"`
	Balances    *BalanceDiff `json:"balances,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (r SwapRecord) Terminal() bool {
	return r.Outcome != ""
}
