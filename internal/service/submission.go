package service

import (
	"context"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/zerox"
)

type SubmitAPI interface {
	Submit(ctx context.Context, req zerox.SubmitRequest) (*zerox.SubmitResponse, error)
}

// SubmissionClient sends signed trades to the relayer. Authorizations are
// single use, so a failed submission is never retried.
type SubmissionClient struct {
	api SubmitAPI
}

func NewSubmissionClient(api SubmitAPI) *SubmissionClient {
	return &SubmissionClient{api: api}
}

func (c *SubmissionClient) Submit(ctx context.Context, chainID int64, quote *model.Quote, tradeSig model.SplitSignature, approvalSig *model.SplitSignature) (*model.SubmissionResult, error) {
	if quote == nil || !quote.Trade.HasTypedData() {
		return nil, apperrors.New(apperrors.ErrSubmission, "quote has no trade to submit", nil)
	}

	req := zerox.SubmitRequest{
		ChainID: chainID,
		Trade: zerox.SignedEnvelope{
			Type:      quote.Trade.Type,
			EIP712:    quote.Trade.EIP712,
			Signature: tradeSig,
		},
	}
	if approvalSig != nil && quote.NeedsApproval() {
		req.Approval = &zerox.SignedEnvelope{
			Type:      quote.Approval.Type,
			EIP712:    quote.Approval.EIP712,
			Signature: *approvalSig,
		}
	}

	resp, err := c.api.Submit(ctx, req)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrSubmission, "failed to submit swap: "+upstreamMessage(err), err)
	}

	hash := resp.Hash
	if hash == "" {
		hash = resp.TradeHash
	}
	if hash == "" {
		return nil, apperrors.New(apperrors.ErrSubmission, "no transaction hash received from submit endpoint", nil)
	}
	return &model.SubmissionResult{Hash: hash}, nil
}
