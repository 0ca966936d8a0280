package service

import (
	"context"
	"errors"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/zerox"
)

const genericQuoteError = "insufficient liquidity or invalid quote"

// QuoteAPI is the subset of the gasless API used for pricing.
type QuoteAPI interface {
	Price(ctx context.Context, req zerox.PriceRequest) (*zerox.PriceResponse, error)
	Quote(ctx context.Context, req zerox.PriceRequest) (*zerox.QuoteResponse, error)
}

// QuoteClient obtains binding quotes and rejects quotes that cannot be
// signed.
type QuoteClient struct {
	api QuoteAPI
}

func NewQuoteClient(api QuoteAPI) *QuoteClient {
	return &QuoteClient{api: api}
}

func (c *QuoteClient) GetQuote(ctx context.Context, chainID int64, sellToken, buyToken, sellAmountAtomic, taker string) (*model.Quote, error) {
	resp, err := c.api.Quote(ctx, zerox.PriceRequest{
		ChainID:    chainID,
		SellToken:  sellToken,
		BuyToken:   buyToken,
		SellAmount: sellAmountAtomic,
		Taker:      taker,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.ErrQuoteRequest, "failed to get quote: "+upstreamMessage(err), err)
	}

	quote := resp.ToModel()
	if !quote.Trade.HasTypedData() {
		msg := genericQuoteError
		if len(resp.ValidationErrors) > 0 && resp.ValidationErrors[0].Description != "" {
			msg = resp.ValidationErrors[0].Description
		}
		return nil, apperrors.New(apperrors.ErrQuoteInvalid, msg, nil)
	}
	return quote, nil
}

// GetPrice returns an indicative price. It is never used to sign.
func (c *QuoteClient) GetPrice(ctx context.Context, req zerox.PriceRequest) (*zerox.PriceResponse, error) {
	resp, err := c.api.Price(ctx, req)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrQuoteRequest, "failed to get price: "+upstreamMessage(err), err)
	}
	return resp, nil
}

// upstreamMessage returns the deepest human-readable message available.
func upstreamMessage(err error) string {
	var httpErr *zerox.HTTPError
	if errors.As(err, &httpErr) {
		if msg := httpErr.Message(); msg != "" {
			return msg
		}
		return httpErr.Error()
	}
	return err.Error()
}
