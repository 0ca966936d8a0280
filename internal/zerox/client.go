package zerox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/pkg/metrics"
)

const (
	HeaderAPIKey  = "0x-api-key"
	HeaderVersion = "0x-version"

	DefaultBaseURL = "https://api.0x.org"
	DefaultVersion = "v2"
)

// Client talks to the 0x Gasless API. The API key and version are attached
// to every request as opaque configuration.
type Client struct {
	BaseURL string
	APIKey  string
	Version string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey, version string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if version == "" {
		version = DefaultVersion
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		Version: version,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("gasless api http %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("gasless api http %d", e.StatusCode)
}

// Message extracts the most specific human-readable message from an
// upstream error body.
func (e *HTTPError) Message() string {
	var payload struct {
		Message string `json:"message"`
		Reason  string `json:"reason"`
		Name    string `json:"name"`
		Data    struct {
			Details []struct {
				Reason string `json:"reason"`
			} `json:"details"`
		} `json:"data"`
		ValidationErrors []ValidationError `json:"validationErrors"`
	}
	if err := json.Unmarshal(e.Body, &payload); err == nil {
		switch {
		case len(payload.ValidationErrors) > 0 && payload.ValidationErrors[0].Description != "":
			return payload.ValidationErrors[0].Description
		case len(payload.Data.Details) > 0 && payload.Data.Details[0].Reason != "":
			if payload.Message != "" {
				return payload.Message + ": " + payload.Data.Details[0].Reason
			}
			return payload.Data.Details[0].Reason
		case payload.Message != "":
			return payload.Message
		case payload.Reason != "":
			return payload.Reason
		case payload.Name != "":
			return payload.Name
		}
	}
	return strings.TrimSpace(string(e.Body))
}

func (c *Client) Price(ctx context.Context, req PriceRequest) (*PriceResponse, error) {
	var out PriceResponse
	if err := c.getJSON(ctx, "price", "/gasless/price", priceQuery(req), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Quote(ctx context.Context, req PriceRequest) (*QuoteResponse, error) {
	var out QuoteResponse
	if err := c.getJSON(ctx, "quote", "/gasless/quote", priceQuery(req), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Submit(ctx context.Context, req SubmitRequest) (*SubmitResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submit request: %w", err)
	}
	status, raw, err := c.Forward(ctx, http.MethodPost, "/gasless/submit", "", body)
	record("submit", status, err)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, &HTTPError{StatusCode: status, Body: raw}
	}
	var out SubmitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode submit response: %w", err)
	}
	return &out, nil
}

func (c *Client) Status(ctx context.Context, tradeHash string, chainID int64) (*StatusResponse, error) {
	q := url.Values{}
	q.Set("chainId", strconv.FormatInt(chainID, 10))
	var out StatusResponse
	if err := c.getJSON(ctx, "status", "/gasless/status/"+url.PathEscape(tradeHash), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Forward sends a request to path with the authentication headers attached
// and returns the raw upstream status and body. Non-2xx statuses are not
// errors here; only transport failures are.
func (c *Client) Forward(ctx context.Context, method, path, rawQuery string, body []byte) (int, []byte, error) {
	u := c.BaseURL + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("accept", "application/json")
	if body != nil {
		httpReq.Header.Set("content-type", "application/json")
	}
	if c.APIKey != "" {
		httpReq.Header.Set(HeaderAPIKey, c.APIKey)
	}
	httpReq.Header.Set(HeaderVersion, c.Version)

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return res.StatusCode, raw, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	status, raw, err := c.Forward(ctx, http.MethodGet, path, q.Encode(), nil)
	record(endpoint, status, err)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &HTTPError{StatusCode: status, Body: raw}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func priceQuery(req PriceRequest) url.Values {
	q := url.Values{}
	q.Set("chainId", strconv.FormatInt(req.ChainID, 10))
	q.Set("sellToken", req.SellToken)
	q.Set("buyToken", req.BuyToken)
	q.Set("sellAmount", req.SellAmount)
	if req.Taker != "" {
		q.Set("taker", req.Taker)
	}
	return q
}

func record(endpoint string, status int, err error) {
	code := strconv.Itoa(status)
	if err != nil && status == 0 {
		code = "transport"
	}
	metrics.UpstreamRequests.WithLabelValues(endpoint, code).Inc()
}
