package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GoPolymarket/gaslessgate/internal/model"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/gaslessgate/internal/signer"
	"github.com/ethereum/go-ethereum/common"
)

// SignatureCollector turns typed-data documents into signatures through the
// wallet signing capability. Signing failures are terminal and never
// retried.
type SignatureCollector struct {
	signer signer.TypedDataSigner
	verify bool
}

// NewSignatureCollector builds a collector. When verify is set every
// signature is recovered and must match the requested signer.
func NewSignatureCollector(s signer.TypedDataSigner, verify bool) *SignatureCollector {
	return &SignatureCollector{signer: s, verify: verify}
}

// Collect requests one signature over typedData from signerAddress.
func (c *SignatureCollector) Collect(ctx context.Context, typedData json.RawMessage, signerAddress string) (string, error) {
	if !common.IsHexAddress(signerAddress) {
		return "", apperrors.NewValidation("invalid signer address")
	}
	addr := common.HexToAddress(signerAddress)

	sig, err := c.signer.SignTypedData(ctx, addr, typedData)
	if err != nil {
		return "", apperrors.New(apperrors.ErrSignatureReject, "signature request rejected or failed: "+err.Error(), err)
	}

	if c.verify {
		if err := signer.Verify(typedData, sig, addr); err != nil {
			return "", apperrors.New(apperrors.ErrSignatureReject, "signature does not match signer", err)
		}
	}
	return sig, nil
}

// Split normalizes a raw signature. A malformed signature from the wallet is
// treated as a signer failure.
func (c *SignatureCollector) Split(signature string) (model.SplitSignature, error) {
	split, err := signer.Split(signature)
	if err != nil {
		return model.SplitSignature{}, apperrors.New(apperrors.ErrSignatureReject, fmt.Sprintf("malformed signature: %v", err), err)
	}
	return split, nil
}

// CollectAndSplit is Collect followed by Split.
func (c *SignatureCollector) CollectAndSplit(ctx context.Context, typedData json.RawMessage, signerAddress string) (model.SplitSignature, error) {
	sig, err := c.Collect(ctx, typedData, signerAddress)
	if err != nil {
		return model.SplitSignature{}, err
	}
	return c.Split(sig)
}
