package handler

import (
	"math/big"
	"net/http"
	"time"

	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/signer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/gin-gonic/gin"
)

type AuthorizationRequest struct {
	Chain      string `json:"chain" binding:"required"`
	Token      string `json:"token" binding:"required"`
	From       string `json:"from" binding:"required,eth_addr"`
	To         string `json:"to" binding:"required,eth_addr"`
	Amount     string `json:"amount" binding:"required"`
	TTLSeconds int    `json:"ttl_seconds" binding:"omitempty,gt=0,lte=86400"`
}

type AuthorizationResponse struct {
	Value       string             `json:"value"`
	ValidAfter  int64              `json:"valid_after"`
	ValidBefore int64              `json:"valid_before"`
	Nonce       string             `json:"nonce"`
	TypedData   apitypes.TypedData `json:"typed_data"`
}

// AuthorizationHandler builds unsigned EIP-3009 transferWithAuthorization
// documents for client-side signing.
type AuthorizationHandler struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewAuthorizationHandler(cat *catalog.Catalog) *AuthorizationHandler {
	return &AuthorizationHandler{catalog: cat, now: time.Now}
}

func (h *AuthorizationHandler) EIP3009(c *gin.Context) {
	var req AuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	chain, ok := lookupChain(h.catalog, req.Chain)
	if !ok {
		c.Error(apperrors.NewValidation("unsupported chain " + req.Chain))
		return
	}
	token, err := h.catalog.Resolve(chain.ID, req.Token)
	if err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}
	atomic, err := catalog.ToAtomic(req.Amount, token.Decimals)
	if err != nil {
		c.Error(apperrors.NewValidation(err.Error()))
		return
	}
	value, _ := new(big.Int).SetString(atomic, 10)

	ttl := time.Duration(req.TTLSeconds) * time.Second
	auth, err := signer.NewTransferAuthorization(common.HexToAddress(req.From), common.HexToAddress(req.To), value, ttl, h.now())
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInternal, err.Error(), err))
		return
	}

	c.JSON(http.StatusOK, AuthorizationResponse{
		Value:       auth.Value.String(),
		ValidAfter:  auth.ValidAfter,
		ValidBefore: auth.ValidBefore,
		Nonce:       hexutil.Encode(auth.Nonce[:]),
		TypedData:   auth.TypedData(token.Name, token.Version, chain.ID, token.Address),
	})
}
