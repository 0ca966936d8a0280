package signer

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ErrUnknownAccount is returned when asked to sign for an address the signer
// does not hold.
var ErrUnknownAccount = errors.New("signer does not control the requested account")

// TypedDataSigner is the wallet signing capability: given a signer address
// and an EIP-712 document it returns a 65-byte hex signature or fails.
type TypedDataSigner interface {
	SignTypedData(ctx context.Context, signer common.Address, typedData json.RawMessage) (string, error)
}

// KeySigner signs typed data with a local secp256k1 key.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewKeySigner parses a hex private key, with or without 0x prefix.
func NewKeySigner(privateKeyHex string) (*KeySigner, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return nil, fmt.Errorf("private key is required")
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %v", err)
	}
	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *KeySigner) Address() common.Address {
	return s.address
}

func (s *KeySigner) SignTypedData(ctx context.Context, signer common.Address, typedData json.RawMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if signer != s.address {
		return "", fmt.Errorf("%w: %s", ErrUnknownAccount, signer.Hex())
	}

	hash, err := HashTypedData(typedData)
	if err != nil {
		return "", err
	}

	signature, err := crypto.Sign(hash, s.key)
	if err != nil {
		return "", err
	}

	// crypto.Sign yields V in {0,1}; wallets return 27/28.
	if signature[64] < 27 {
		signature[64] += 27
	}

	return "0x" + common.Bytes2Hex(signature), nil
}

// DecodeTypedData parses an EIP-712 JSON document.
func DecodeTypedData(raw json.RawMessage) (apitypes.TypedData, error) {
	var td apitypes.TypedData
	if len(raw) == 0 {
		return td, fmt.Errorf("typed data is empty")
	}
	if err := json.Unmarshal(raw, &td); err != nil {
		return td, fmt.Errorf("invalid typed data: %w", err)
	}
	if td.PrimaryType == "" {
		return td, fmt.Errorf("typed data has no primaryType")
	}
	return td, nil
}

// HashTypedData returns the EIP-712 digest keccak256("\x19\x01" ‖ domainSeparator ‖ hashStruct(message)).
func HashTypedData(raw json.RawMessage) ([]byte, error) {
	td, err := DecodeTypedData(raw)
	if err != nil {
		return nil, err
	}
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return hash, nil
}
