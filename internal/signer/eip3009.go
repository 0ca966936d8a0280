package signer

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// DefaultAuthorizationTTL bounds how long a transfer authorization stays valid.
const DefaultAuthorizationTTL = 5 * time.Minute

// TransferAuthorization is an EIP-3009 transferWithAuthorization grant.
type TransferAuthorization struct {
	From        common.Address `json:"from"`
	To          common.Address `json:"to"`
	Value       *big.Int       `json:"value"`
	ValidAfter  int64          `json:"validAfter"`
	ValidBefore int64          `json:"validBefore"`
	Nonce       [32]byte       `json:"nonce"`
}

// NewTransferAuthorization creates a grant valid from now until now+ttl with
// a random 32-byte nonce.
func NewTransferAuthorization(from, to common.Address, value *big.Int, ttl time.Duration, now time.Time) (TransferAuthorization, error) {
	if value == nil || value.Sign() <= 0 {
		return TransferAuthorization{}, fmt.Errorf("value must be positive")
	}
	if ttl <= 0 {
		ttl = DefaultAuthorizationTTL
	}
	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return TransferAuthorization{}, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return TransferAuthorization{
		From:        from,
		To:          to,
		Value:       new(big.Int).Set(value),
		ValidAfter:  0,
		ValidBefore: now.Add(ttl).Unix(),
		Nonce:       nonce,
	}, nil
}

// TypedData renders the grant as the TransferWithAuthorization EIP-712
// document for the token contract.
func (a TransferAuthorization) TypedData(tokenName, tokenVersion string, chainID int64, token common.Address) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"TransferWithAuthorization": {
				{Name: "from", Type: "address"},
				{Name: "to", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "validAfter", Type: "uint256"},
				{Name: "validBefore", Type: "uint256"},
				{Name: "nonce", Type: "bytes32"},
			},
		},
		PrimaryType: "TransferWithAuthorization",
		Domain: apitypes.TypedDataDomain{
			Name:              tokenName,
			Version:           tokenVersion,
			ChainId:           (*math.HexOrDecimal256)(big.NewInt(chainID)),
			VerifyingContract: token.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"from":        a.From.Hex(),
			"to":          a.To.Hex(),
			"value":       a.Value.String(),
			"validAfter":  strconv.FormatInt(a.ValidAfter, 10),
			"validBefore": strconv.FormatInt(a.ValidBefore, 10),
			"nonce":       hexutil.Encode(a.Nonce[:]),
		},
	}
}
