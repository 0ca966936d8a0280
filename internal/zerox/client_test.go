package zerox

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteSendsQueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gasless/quote", r.URL.Path)
		assert.Equal(t, "8453", r.URL.Query().Get("chainId"))
		assert.Equal(t, "5000000", r.URL.Query().Get("sellAmount"))
		assert.Equal(t, "0xtaker", r.URL.Query().Get("taker"))
		assert.Equal(t, "secret", r.Header.Get(HeaderAPIKey))
		assert.Equal(t, "v2", r.Header.Get(HeaderVersion))
		_, _ = io.WriteString(w, `{
			"liquidityAvailable": true,
			"sellAmount": "5000000",
			"buyAmount": "4990000000000000000",
			"trade": {"type": "settler_metatransaction", "eip712": {"primaryType": "Trade"}},
			"approval": {"type": "permit", "eip712": {"primaryType": "Permit"}},
			"issues": {"allowance": {"actual": "0", "spender": "0xspender"}}
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", "", time.Second)
	resp, err := c.Quote(t.Context(), PriceRequest{
		ChainID: 8453, SellToken: "0xsell", BuyToken: "0xbuy", SellAmount: "5000000", Taker: "0xtaker",
	})
	require.NoError(t, err)

	q := resp.ToModel()
	assert.Equal(t, "4990000000000000000", q.BuyAmount)
	assert.True(t, q.Trade.HasTypedData())
	assert.True(t, q.NeedsApproval())
	assert.Equal(t, "0xspender", q.AllowanceTarget)
	assert.JSONEq(t, `{"primaryType":"Trade"}`, string(q.Trade.EIP712))
}

func TestNon2xxReturnsHTTPErrorWithUpstreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"name":"INPUT_INVALID","message":"Validation Failed","data":{"details":[{"field":"sellAmount","reason":"too small"}]}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "v2", time.Second)
	_, err := c.Price(t.Context(), PriceRequest{ChainID: 1})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "Validation Failed: too small", httpErr.Message())
}

func TestSubmitEncodesSignedEnvelopes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("content-type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 8453, body["chainId"])
		trade := body["trade"].(map[string]any)
		sig := trade["signature"].(map[string]any)
		assert.EqualValues(t, 2, sig["signatureType"])
		assert.EqualValues(t, 27, sig["v"])
		_, hasApproval := body["approval"]
		assert.False(t, hasApproval)

		_, _ = io.WriteString(w, `{"tradeHash":"0xabc"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "v2", time.Second)
	resp, err := c.Submit(t.Context(), SubmitRequest{
		ChainID: 8453,
		Trade: SignedEnvelope{
			Type:      "settler_metatransaction",
			EIP712:    json.RawMessage(`{"primaryType":"Trade"}`),
			Signature: model.SplitSignature{V: 27, R: "0x01", S: "0x02", SignatureType: model.SignatureTypeEIP712},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", resp.TradeHash)
}

func TestStatusPathAndChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gasless/status/0xabc", r.URL.Path)
		assert.Equal(t, "137", r.URL.Query().Get("chainId"))
		_, _ = io.WriteString(w, `{"status":"failed","error":"slippage"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", time.Second)
	resp, err := c.Status(t.Context(), "0xabc", 137)
	require.NoError(t, err)
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, "slippage", resp.Error)
}

func TestForwardRelaysUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a=1", r.URL.RawQuery)
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, `{"x":1}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "", "", time.Second)
	status, body, err := c.Forward(t.Context(), http.MethodGet, "/gasless/price", "a=1", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, status)
	assert.JSONEq(t, `{"x":1}`, string(body))
}
