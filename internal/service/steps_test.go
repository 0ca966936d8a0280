package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/signer"
	"github.com/GoPolymarket/gaslessgate/internal/zerox"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const permitDoc = `{
	"types": {
		"EIP712Domain": [
			{"name": "name", "type": "string"},
			{"name": "version", "type": "string"},
			{"name": "chainId", "type": "uint256"},
			{"name": "verifyingContract", "type": "address"}
		],
		"Permit": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"},
			{"name": "value", "type": "uint256"},
			{"name": "nonce", "type": "uint256"},
			{"name": "deadline", "type": "uint256"}
		]
	},
	"domain": {"name": "USD Coin", "version": "2", "chainId": 8453, "verifyingContract": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"},
	"primaryType": "Permit",
	"message": {
		"owner": "0x1111111111111111111111111111111111111111",
		"spender": "0x0000000000001fF3684f28c67538d4D072C22734",
		"value": "5000000",
		"nonce": "0",
		"deadline": "1900000000"
	}
}`

func TestQuoteClient_PassesParameters(t *testing.T) {
	api := &fakeQuoteAPI{resp: quoteWith(true)}
	q, err := NewQuoteClient(api).GetQuote(context.Background(), 8453, "0xsell", "0xbuy", "5000000", testTaker)
	require.NoError(t, err)

	assert.Equal(t, zerox.PriceRequest{ChainID: 8453, SellToken: "0xsell", BuyToken: "0xbuy", SellAmount: "5000000", Taker: testTaker}, api.last)
	assert.True(t, q.NeedsApproval())
	assert.JSONEq(t, tradeDoc, string(q.Trade.EIP712))
}

func TestQuoteClient_InvalidQuotes(t *testing.T) {
	cases := map[string]struct {
		resp *zerox.QuoteResponse
		want string
	}{
		"no trade":       {&zerox.QuoteResponse{}, genericQuoteError},
		"null eip712":    {&zerox.QuoteResponse{Trade: &zerox.QuoteEnvelope{EIP712: json.RawMessage("null")}}, genericQuoteError},
		"upstream cause": {&zerox.QuoteResponse{ValidationErrors: []zerox.ValidationError{{Description: "INSUFFICIENT_BALANCE"}}}, "INSUFFICIENT_BALANCE"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewQuoteClient(&fakeQuoteAPI{resp: tc.resp}).GetQuote(context.Background(), 8453, "a", "b", "1", testTaker)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.QuoteInvalid)
			assert.Equal(t, tc.want, apperrors.Wrap(err).Message)
		})
	}
}

func TestQuoteClient_RequestFailureUsesUpstreamMessage(t *testing.T) {
	api := &fakeQuoteAPI{err: &zerox.HTTPError{StatusCode: 400, Body: []byte(`{"name":"INPUT_INVALID","message":"Invalid taker"}`)}}
	_, err := NewQuoteClient(api).GetQuote(context.Background(), 8453, "a", "b", "1", testTaker)

	require.Error(t, err)
	assert.True(t, apperrors.HasType(err, apperrors.ErrQuoteRequest))
	assert.Contains(t, err.Error(), "Invalid taker")
}

func TestSignatureCollector_VerifiesRecoveredSigner(t *testing.T) {
	key, err := signer.NewKeySigner("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)

	collector := NewSignatureCollector(key, true)
	sig, err := collector.CollectAndSplit(context.Background(), json.RawMessage(permitDoc), key.Address().Hex())
	require.NoError(t, err)
	assert.Contains(t, []uint8{27, 28}, sig.V)
	assert.Equal(t, model.SignatureTypeEIP712, sig.SignatureType)

	_, err = collector.Collect(context.Background(), json.RawMessage(permitDoc), testTaker)
	assert.True(t, apperrors.HasType(err, apperrors.ErrSignatureReject))
}

type lyingSigner struct{ sig string }

func (s lyingSigner) SignTypedData(context.Context, common.Address, json.RawMessage) (string, error) {
	return s.sig, nil
}

func TestSignatureCollector_RejectsMismatchAndMalformed(t *testing.T) {
	// A well-formed signature from some other key.
	other := "0x" + strings.Repeat("11", 32) + strings.Repeat("22", 32) + "1b"
	_, err := NewSignatureCollector(lyingSigner{sig: other}, true).Collect(context.Background(), json.RawMessage(permitDoc), testTaker)
	assert.True(t, apperrors.HasType(err, apperrors.ErrSignatureReject))

	_, err = NewSignatureCollector(lyingSigner{sig: "0xdead"}, false).CollectAndSplit(context.Background(), json.RawMessage(permitDoc), testTaker)
	assert.True(t, apperrors.HasType(err, apperrors.ErrSignatureReject))

	_, err = NewSignatureCollector(lyingSigner{}, false).Collect(context.Background(), json.RawMessage(permitDoc), "not-an-address")
	assert.True(t, apperrors.HasType(err, apperrors.ErrValidation))
}

func TestSubmissionClient_BuildsPayload(t *testing.T) {
	api := &fakeSubmitAPI{resp: &zerox.SubmitResponse{Hash: "0xhash"}}
	quote := quoteWith(true).ToModel()
	trade := model.SplitSignature{V: 27, R: "0x01", S: "0x02", SignatureType: model.SignatureTypeEIP712}
	approval := model.SplitSignature{V: 28, R: "0x03", S: "0x04", SignatureType: model.SignatureTypeEIP712}

	res, err := NewSubmissionClient(api).Submit(context.Background(), 8453, quote, trade, &approval)
	require.NoError(t, err)

	assert.Equal(t, "0xhash", res.Hash)
	assert.Equal(t, int64(8453), api.last.ChainID)
	assert.Equal(t, "settler_metatransaction", api.last.Trade.Type)
	assert.JSONEq(t, tradeDoc, string(api.last.Trade.EIP712))
	assert.Equal(t, trade, api.last.Trade.Signature)
	require.NotNil(t, api.last.Approval)
	assert.Equal(t, approval, api.last.Approval.Signature)
}

func TestSubmissionClient_Failures(t *testing.T) {
	quote := quoteWith(false).ToModel()
	sig := model.SplitSignature{V: 27, SignatureType: model.SignatureTypeEIP712}

	api := &fakeSubmitAPI{err: errors.New("connection refused")}
	_, err := NewSubmissionClient(api).Submit(context.Background(), 8453, quote, sig, nil)
	assert.True(t, apperrors.HasType(err, apperrors.ErrSubmission))
	assert.Equal(t, 1, api.calls)

	api = &fakeSubmitAPI{resp: &zerox.SubmitResponse{Type: "settler_metatransaction"}}
	_, err = NewSubmissionClient(api).Submit(context.Background(), 8453, quote, sig, nil)
	assert.True(t, apperrors.HasType(err, apperrors.ErrSubmission))
	assert.Contains(t, err.Error(), "no transaction hash")
}
