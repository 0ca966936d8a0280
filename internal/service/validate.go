package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

// SwapIntent is a swap as a user states it: chain by id or name, tokens by
// symbol or address, amount in human units or already atomic.
type SwapIntent struct {
	Chain            string `json:"chain,omitempty"`
	ChainID          int64  `json:"chain_id,omitempty" validate:"omitempty,gt=0"`
	SellToken        string `json:"sell_token" validate:"required"`
	BuyToken         string `json:"buy_token" validate:"required"`
	Amount           string `json:"amount,omitempty" validate:"required_without=SellAmountAtomic"`
	SellAmountAtomic string `json:"sell_amount_atomic,omitempty"`
	Recipient        string `json:"recipient,omitempty" validate:"omitempty,eth_addr"`
}

// RequestValidator turns intents into immutable swap requests. It performs
// no network calls.
type RequestValidator struct {
	catalog  *catalog.Catalog
	validate *validator.Validate
}

func NewRequestValidator(cat *catalog.Catalog) *RequestValidator {
	return &RequestValidator{
		catalog:  cat,
		validate: validator.New(),
	}
}

func (v *RequestValidator) Catalog() *catalog.Catalog { return v.catalog }

// BuildRequest resolves an intent for the given taker.
func (v *RequestValidator) BuildRequest(intent SwapIntent, taker string) (model.SwapRequest, error) {
	if err := v.validate.Struct(intent); err != nil {
		return model.SwapRequest{}, validationError(err)
	}

	chain, err := v.resolveChain(intent)
	if err != nil {
		return model.SwapRequest{}, err
	}
	sell, err := v.catalog.Resolve(chain.ID, intent.SellToken)
	if err != nil {
		return model.SwapRequest{}, apperrors.NewValidation("sell token: " + err.Error())
	}
	buy, err := v.catalog.Resolve(chain.ID, intent.BuyToken)
	if err != nil {
		return model.SwapRequest{}, apperrors.NewValidation("buy token: " + err.Error())
	}

	atomic := strings.TrimSpace(intent.SellAmountAtomic)
	if atomic == "" {
		atomic, err = catalog.ToAtomic(intent.Amount, sell.Decimals)
		if err != nil {
			return model.SwapRequest{}, apperrors.NewValidation(err.Error())
		}
	}

	recipient := strings.TrimSpace(intent.Recipient)
	if recipient == "" {
		recipient = taker
	}

	req := model.SwapRequest{
		ChainID:          chain.ID,
		SellToken:        sell.Address.Hex(),
		BuyToken:         buy.Address.Hex(),
		SellAmountAtomic: atomic,
		Taker:            taker,
		Recipient:        recipient,
	}
	if err := v.Validate(req); err != nil {
		return model.SwapRequest{}, err
	}
	return req, nil
}

// Validate checks a resolved request: known chain, tokens listed on that
// chain, a positive atomic amount and well-formed addresses.
func (v *RequestValidator) Validate(req model.SwapRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return validationError(err)
	}
	if _, ok := v.catalog.ChainByID(req.ChainID); !ok {
		return apperrors.Newf(apperrors.ErrValidation, "unsupported chain %d", req.ChainID)
	}
	if _, err := v.catalog.Resolve(req.ChainID, req.SellToken); err != nil {
		return apperrors.NewValidation("sell token: " + err.Error())
	}
	if _, err := v.catalog.Resolve(req.ChainID, req.BuyToken); err != nil {
		return apperrors.NewValidation("buy token: " + err.Error())
	}
	if !catalog.IsPositiveAtomic(req.SellAmountAtomic) {
		return apperrors.NewValidation("sell amount must be a positive integer in atomic units")
	}
	if req.Recipient != "" && !common.IsHexAddress(req.Recipient) {
		return apperrors.NewValidation("invalid recipient address")
	}
	return nil
}

func (v *RequestValidator) resolveChain(intent SwapIntent) (catalog.Chain, error) {
	if intent.ChainID > 0 {
		ch, ok := v.catalog.ChainByID(intent.ChainID)
		if !ok {
			return catalog.Chain{}, apperrors.Newf(apperrors.ErrValidation, "unsupported chain %d", intent.ChainID)
		}
		return ch, nil
	}
	name := strings.TrimSpace(intent.Chain)
	if name == "" {
		return catalog.Chain{}, apperrors.NewValidation("chain is required")
	}
	if id, err := strconv.ParseInt(name, 10, 64); err == nil {
		if ch, ok := v.catalog.ChainByID(id); ok {
			return ch, nil
		}
	}
	ch, ok := v.catalog.ChainByKey(name)
	if !ok {
		return catalog.Chain{}, apperrors.Newf(apperrors.ErrValidation, "unsupported chain %q", intent.Chain)
	}
	return ch, nil
}

func validationError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.New(apperrors.ErrValidation, err.Error(), err)
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required", "required_without":
		msg = fmt.Sprintf("%s is required", fieldName(fe))
	case "eth_addr":
		msg = fmt.Sprintf("%s must be a 20-byte hex address", fieldName(fe))
	case "nefield":
		msg = "sell and buy tokens must differ"
	case "numeric":
		msg = fmt.Sprintf("%s must be numeric", fieldName(fe))
	default:
		msg = fmt.Sprintf("%s failed %s validation", fieldName(fe), fe.Tag())
	}
	return apperrors.New(apperrors.ErrValidation, msg, err)
}

func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "ChainID", "Chain":
		return "chain"
	case "SellToken":
		return "sell token"
	case "BuyToken":
		return "buy token"
	case "Amount", "SellAmountAtomic":
		return "amount"
	case "Taker":
		return "taker"
	case "Recipient":
		return "recipient"
	default:
		return strings.ToLower(fe.Field())
	}
}
