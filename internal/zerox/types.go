package zerox

import (
	"encoding/json"

	"github.com/GoPolymarket/gaslessgate/internal/model"
)

// PriceRequest carries the query shared by the price and quote endpoints.
type PriceRequest struct {
	ChainID    int64
	SellToken  string
	BuyToken   string
	SellAmount string
	Taker      string
}

type ValidationError struct {
	Field       string `json:"field,omitempty"`
	Code        any    `json:"code,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Description string `json:"description"`
}

type PriceResponse struct {
	LiquidityAvailable bool              `json:"liquidityAvailable"`
	BuyAmount          string            `json:"buyAmount"`
	SellAmount         string            `json:"sellAmount"`
	MinBuyAmount       string            `json:"minBuyAmount,omitempty"`
	BuyToken           string            `json:"buyToken,omitempty"`
	SellToken          string            `json:"sellToken,omitempty"`
	Fees               json.RawMessage   `json:"fees,omitempty"`
	Issues             json.RawMessage   `json:"issues,omitempty"`
	ZID                string            `json:"zid,omitempty"`
	ValidationErrors   []ValidationError `json:"validationErrors,omitempty"`
}

type QuoteEnvelope struct {
	Type   string          `json:"type"`
	Hash   string          `json:"hash,omitempty"`
	EIP712 json.RawMessage `json:"eip712,omitempty"`
}

type QuoteResponse struct {
	LiquidityAvailable bool              `json:"liquidityAvailable"`
	ChainID            int64             `json:"chainId,omitempty"`
	BuyAmount          string            `json:"buyAmount"`
	SellAmount         string            `json:"sellAmount"`
	MinBuyAmount       string            `json:"minBuyAmount,omitempty"`
	BuyToken           string            `json:"buyToken,omitempty"`
	SellToken          string            `json:"sellToken,omitempty"`
	Trade              *QuoteEnvelope    `json:"trade,omitempty"`
	Approval           *QuoteEnvelope    `json:"approval,omitempty"`
	Issues             *QuoteIssues      `json:"issues,omitempty"`
	ZID                string            `json:"zid,omitempty"`
	ValidationErrors   []ValidationError `json:"validationErrors,omitempty"`
}

type QuoteIssues struct {
	Allowance *struct {
		Actual  string `json:"actual"`
		Spender string `json:"spender"`
	} `json:"allowance,omitempty"`
}

// ToModel converts the wire quote into the domain quote.
func (q *QuoteResponse) ToModel() *model.Quote {
	out := &model.Quote{
		ChainID:      q.ChainID,
		SellToken:    q.SellToken,
		BuyToken:     q.BuyToken,
		SellAmount:   q.SellAmount,
		BuyAmount:    q.BuyAmount,
		MinBuyAmount: q.MinBuyAmount,
		ZID:          q.ZID,
	}
	if q.Trade != nil {
		out.Trade = &model.TypedDataEnvelope{Type: q.Trade.Type, EIP712: q.Trade.EIP712}
	}
	if q.Approval != nil {
		out.Approval = &model.TypedDataEnvelope{Type: q.Approval.Type, EIP712: q.Approval.EIP712}
	}
	if q.Issues != nil && q.Issues.Allowance != nil {
		out.AllowanceTarget = q.Issues.Allowance.Spender
	}
	return out
}

// SignedEnvelope is one signed typed-data document in a submission.
type SignedEnvelope struct {
	Type      string               `json:"type"`
	EIP712    json.RawMessage      `json:"eip712"`
	Signature model.SplitSignature `json:"signature"`
}

type SubmitRequest struct {
	ChainID  int64           `json:"chainId"`
	Trade    SignedEnvelope  `json:"trade"`
	Approval *SignedEnvelope `json:"approval,omitempty"`
}

type SubmitResponse struct {
	Hash      string `json:"hash,omitempty"`
	TradeHash string `json:"tradeHash,omitempty"`
	Type      string `json:"type,omitempty"`
	ZID       string `json:"zid,omitempty"`
}

type StatusResponse struct {
	Status       string          `json:"status"`
	Error        string          `json:"error,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	Transactions json.RawMessage `json:"transactions,omitempty"`
	ZID          string          `json:"zid,omitempty"`
}
